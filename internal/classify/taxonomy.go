package classify

import (
	_ "embed"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/finstmt/internal/model"
)

//go:embed taxonomy.yaml
var taxonomyYAML []byte

// taxonomyEntry is one official-label row.
type taxonomyEntry struct {
	Label    string        `yaml:"label"`
	DataType string        `yaml:"data_type"`
	Balance  model.Balance `yaml:"balance"`
}

func (e taxonomyEntry) dataType() model.DataType {
	switch model.DataType(e.DataType) {
	case model.DataTypeShares, model.DataTypePerShare, model.DataTypePercent:
		return model.DataType(e.DataType)
	default:
		return model.DataTypeMonetary
	}
}

// taxonomy is keyed by lowercased CamelCase element name. Built once at init
// and never written afterwards.
var taxonomy = mustLoadTaxonomy(taxonomyYAML)

func mustLoadTaxonomy(data []byte) map[string]taxonomyEntry {
	t, err := loadTaxonomy(data)
	if err != nil {
		panic(err)
	}
	return t
}

func loadTaxonomy(data []byte) (map[string]taxonomyEntry, error) {
	var raw map[string]taxonomyEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "classify: parse taxonomy")
	}
	out := make(map[string]taxonomyEntry, len(raw))
	for name, e := range raw {
		switch e.Balance {
		case "", model.BalanceDebit, model.BalanceCredit:
		default:
			return nil, eris.Errorf("classify: taxonomy %s: unknown balance %q", name, e.Balance)
		}
		out[strings.ToLower(name)] = e
	}
	return out, nil
}

func lookupTaxonomy(name string) (taxonomyEntry, bool) {
	e, ok := taxonomy[strings.ToLower(name)]
	return e, ok
}

// Balance returns the natural debit/credit side of a tag, if the taxonomy
// records one. Namespace prefixes are ignored.
func Balance(tag string) (model.Balance, bool) {
	if i := strings.LastIndexByte(tag, ':'); i >= 0 {
		tag = tag[i+1:]
	}
	e, ok := lookupTaxonomy(tag)
	if !ok || e.Balance == "" {
		return "", false
	}
	return e.Balance, true
}
