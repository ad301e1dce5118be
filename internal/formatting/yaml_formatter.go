package formatting

import (
	"gopkg.in/yaml.v3"
)

func (p *Printer) writeYAML(v interface{}) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
