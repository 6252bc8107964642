package lut

import (
	"bytes"
	"io"
	"strconv"
)

// flushAt is the buffered byte count at which WriteTo hands data to the
// writer.
const flushAt = 32 << 10

// WriteTo writes the cube in .cube format: a TITLE line, a comment, the
// LUT_3D_SIZE line and a blank line, then one "r g b" line per entry with
// six decimals.
func (c *Cube) WriteTo(w io.Writer) (int64, error) {
	var total int64
	buf := make([]byte, 0, flushAt+64)
	flush := func() error {
		n, err := w.Write(buf)
		total += int64(n)
		buf = buf[:0]
		return err
	}

	buf = append(buf, "TITLE \""...)
	buf = append(buf, c.Title...)
	buf = append(buf, "\"\n# "...)
	buf = append(buf, c.Comment...)
	buf = append(buf, "\nLUT_3D_SIZE "...)
	buf = strconv.AppendInt(buf, int64(c.Size), 10)
	buf = append(buf, "\n\n"...)

	for _, e := range c.Data {
		buf = appendValue(buf, e[0])
		buf = append(buf, ' ')
		buf = appendValue(buf, e[1])
		buf = append(buf, ' ')
		buf = appendValue(buf, e[2])
		buf = append(buf, '\n')
		if len(buf) >= flushAt {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if len(buf) > 0 {
		if err := flush(); err != nil {
			return total, err
		}
	}
	return total, nil
}

// Bytes returns the serialized cube.
func (c *Cube) Bytes() []byte {
	var b bytes.Buffer
	b.Grow(64 + len(c.Data)*27)
	_, _ = c.WriteTo(&b)
	return b.Bytes()
}

func appendValue(buf []byte, v float64) []byte {
	return strconv.AppendFloat(buf, clampUnit(v), 'f', 6, 64)
}
