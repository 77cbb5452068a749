package storage

import "io"

// progressReader wraps a reader and reports the percentage of total
// bytes consumed so far. Percentages are non-decreasing and capped at
// 99: the final 100 belongs to the completed upload call, not to the
// last read, since the provider may still fail after the body is
// drained.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	lastPct  int
	onChange ProgressFunc
}

func newProgressReader(r io.Reader, total int64, onChange ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, onChange: onChange}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.onChange != nil && p.total > 0 {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		if pct > 99 {
			pct = 99
		}
		if pct > p.lastPct {
			p.lastPct = pct
			p.onChange(pct)
		}
	}
	return n, err
}
