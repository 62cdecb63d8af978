package diag

import (
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/painless-lang/painless/internal/token"
)

// EncodeJSON renders a Report as the JSON diagnostic document a host
// process logs or forwards (spec.md §6 "external interfaces"): a top-level
// `diagnostics` array of {category, code, message, line, column, warning}.
// sjson builds the document incrementally rather than through a struct tag
// marshal, so a caller can layer this under a larger structured log line
// with plain string-path `sjson.SetBytes` calls of their own.
func EncodeJSON(r *Report) ([]byte, error) {
	buf := []byte(`{"diagnostics":[]}`)
	var err error
	for i, d := range r.Diagnostics {
		path := func(field string) string { return "diagnostics." + strconv.Itoa(i) + "." + field }
		if buf, err = sjson.SetBytes(buf, path("category"), string(d.Category)); err != nil {
			return nil, err
		}
		if buf, err = sjson.SetBytes(buf, path("code"), d.Code); err != nil {
			return nil, err
		}
		if buf, err = sjson.SetBytes(buf, path("message"), d.Message); err != nil {
			return nil, err
		}
		if buf, err = sjson.SetBytes(buf, path("line"), d.Pos.Line); err != nil {
			return nil, err
		}
		if buf, err = sjson.SetBytes(buf, path("column"), d.Pos.Column); err != nil {
			return nil, err
		}
		if buf, err = sjson.SetBytes(buf, path("warning"), d.Warning); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// DecodeJSON reads back a diagnostic document EncodeJSON produced, e.g. for
// a test that round-trips a report through a host's logging pipeline.
func DecodeJSON(data []byte) (*Report, error) {
	r := &Report{}
	result := gjson.GetBytes(data, "diagnostics")
	result.ForEach(func(_, item gjson.Result) bool {
		r.Diagnostics = append(r.Diagnostics, &Diagnostic{
			Category: Category(item.Get("category").String()),
			Code:     item.Get("code").String(),
			Message:  item.Get("message").String(),
			Pos: token.Position{
				Line:   int(item.Get("line").Int()),
				Column: int(item.Get("column").Int()),
			},
			Warning: item.Get("warning").Bool(),
		})
		return true
	})
	return r, nil
}
