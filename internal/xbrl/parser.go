// Package xbrl decodes XBRL-to-JSON filing bodies into raw facts.
package xbrl

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/finstmt/internal/model"
)

const dateLayout = "2006-01-02"

// Document is a decoded filing body: section name → field name → facts.
type Document map[string]map[string][]Fact

// Fact is a single reported value as it appears in the JSON body.
type Fact struct {
	Value    json.RawMessage `json:"value"`
	Decimals string          `json:"decimals,omitempty"`
	UnitRef  string          `json:"unitRef,omitempty"`
	Period   FactPeriod      `json:"period"`
	Segment  Segments        `json:"segment,omitempty"`
}

// FactPeriod holds the raw date strings of a fact.
type FactPeriod struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Instant   string `json:"instant,omitempty"`
}

// Segment is one dimension/member pair.
type Segment struct {
	Dimension string `json:"dimension"`
	Value     string `json:"value"`
}

// Segments accepts either a single segment object or an array of them.
type Segments []Segment

// UnmarshalJSON implements json.Unmarshaler.
func (s *Segments) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if data[0] == '[' {
		var list []Segment
		if err := json.Unmarshal(data, &list); err != nil {
			return eris.Wrap(err, "xbrl: decode segment list")
		}
		*s = list
		return nil
	}
	var one Segment
	if err := json.Unmarshal(data, &one); err != nil {
		return eris.Wrap(err, "xbrl: decode segment")
	}
	*s = Segments{one}
	return nil
}

// Parse decodes a filing body from r. Non-object top-level members (such as
// scalar metadata) are ignored.
func Parse(r io.Reader) (Document, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "xbrl: parse document")
	}

	doc := make(Document, len(raw))
	for section, body := range raw {
		body = bytes.TrimSpace(body)
		if len(body) == 0 || body[0] != '{' {
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			continue
		}
		out := make(map[string][]Fact, len(fields))
		for name, fv := range fields {
			facts, ok := decodeFacts(fv)
			if !ok {
				continue
			}
			out[name] = facts
		}
		if len(out) > 0 {
			doc[section] = out
		}
	}
	return doc, nil
}

// decodeFacts accepts a fact list or a single fact object.
func decodeFacts(data json.RawMessage) ([]Fact, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, false
	}
	switch data[0] {
	case '[':
		var facts []Fact
		if err := json.Unmarshal(data, &facts); err != nil {
			return nil, false
		}
		return facts, true
	case '{':
		var f Fact
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, false
		}
		return []Fact{f}, true
	default:
		return nil, false
	}
}

// Sections converts the document to raw facts. Facts with unparseable values
// or dates are skipped.
func (d Document) Sections() model.Sections {
	out := make(model.Sections, len(d))
	for section, fields := range d {
		conv := make(map[string][]model.RawFact, len(fields))
		for name, facts := range fields {
			for _, f := range facts {
				rf, ok := f.toRaw(name)
				if !ok {
					continue
				}
				conv[name] = append(conv[name], rf)
			}
		}
		if len(conv) > 0 {
			out[section] = conv
		}
	}
	return out
}

func (f Fact) toRaw(name string) (model.RawFact, bool) {
	v, ok := ParseValue(f.Value)
	if !ok {
		return model.RawFact{}, false
	}
	p, ok := f.Period.parse()
	if !ok {
		return model.RawFact{}, false
	}
	rf := model.RawFact{TagName: name, Value: v, Period: p}
	for _, seg := range f.Segment {
		rf.Segments = append(rf.Segments, model.Segment{Dimension: seg.Dimension, Value: seg.Value})
	}
	return rf, true
}

func (p FactPeriod) parse() (model.FactPeriod, bool) {
	if p.Instant != "" {
		t, err := time.Parse(dateLayout, p.Instant)
		if err != nil {
			return model.FactPeriod{}, false
		}
		return model.FactPeriod{End: t, Instant: true}, true
	}
	if p.EndDate == "" {
		return model.FactPeriod{}, false
	}
	end, err := time.Parse(dateLayout, p.EndDate)
	if err != nil {
		return model.FactPeriod{}, false
	}
	if p.StartDate == "" {
		return model.FactPeriod{End: end, Instant: true}, true
	}
	start, err := time.Parse(dateLayout, p.StartDate)
	if err != nil {
		return model.FactPeriod{}, false
	}
	return model.FactPeriod{Start: start, End: end}, true
}

// ParseValue reads a numeric fact value encoded as a JSON number or string.
func ParseValue(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
