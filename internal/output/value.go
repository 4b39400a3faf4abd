package output

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// nullMarker stands for SQL NULL in value listings.
const nullMarker = `\N`

var lineEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

// FormatValue renders one selected value on a single line. NULL is
// written as \N and bytes as \x-prefixed hex. Backslashes, line breaks
// and tabs inside text are escaped.
func FormatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return nullMarker
	case string:
		return lineEscaper.Replace(v)
	case []byte:
		return `\x` + hex.EncodeToString(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format("2006-01-02 15:04:05.999999Z07:00")
	case fmt.Stringer:
		return lineEscaper.Replace(v.String())
	default:
		return lineEscaper.Replace(fmt.Sprint(v))
	}
}

// WriteValues writes values one per line.
func WriteValues(w io.Writer, values []any) error {
	bw := bufio.NewWriter(w)
	for _, v := range values {
		bw.WriteString(FormatValue(v))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
