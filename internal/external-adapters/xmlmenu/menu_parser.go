// Package xmlmenu parses L1 trigger menu XML documents.
package xmlmenu

import (
	"encoding/xml"
	"os"

	"github.com/pkg/errors"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/entities"
)

// xmlMenu represents the raw XML structure
type xmlMenu struct {
	XMLName      xml.Name       `xml:"menu"`
	Name         string         `xml:"name"`
	UUIDMenu     string         `xml:"uuid_menu"`
	UUIDFirmware string         `xml:"uuid_firmware"`
	NModules     int            `xml:"n_modules"`
	Algorithms   []xmlAlgorithm `xml:"algorithm"`
}

type xmlAlgorithm struct {
	Name        string `xml:"name"`
	Index       int    `xml:"index"`
	ModuleID    int    `xml:"module_id"`
	ModuleIndex int    `xml:"module_index"`
	Expression  string `xml:"expression"`
}

// MenuParser parses XML menu files
type MenuParser struct{}

// NewMenuParser creates a new XML menu parser
func NewMenuParser() *MenuParser {
	return &MenuParser{}
}

// ParseFile parses an XML menu file into a Menu entity
func (p *MenuParser) ParseFile(filePath string) (*entities.Menu, error) {
	//nolint:gosec // G304: filePath is a menu document path given by the user
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading menu file %q", filePath)
	}

	return p.Parse(data)
}

// Parse parses XML bytes into a Menu entity
func (p *MenuParser) Parse(data []byte) (*entities.Menu, error) {
	var raw xmlMenu
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parsing menu XML")
	}

	if raw.Name == "" {
		return nil, errors.New("menu has no name")
	}
	if err := entities.ValidateXMLName(raw.Name); err != nil {
		return nil, err
	}
	if raw.NModules < 1 {
		return nil, errors.Errorf("menu %q contains no modules", raw.Name)
	}

	menu := &entities.Menu{
		Name:     raw.Name,
		UUIDMenu: raw.UUIDMenu,
		UUIDFw:   raw.UUIDFirmware,
		NModules: raw.NModules,
	}

	seen := make(map[int]string, len(raw.Algorithms))
	for _, algo := range raw.Algorithms {
		if algo.Index < 0 || algo.Index >= entities.MaxAlgorithms {
			return nil, errors.Errorf("algorithm %q: index %d out of range [0, %d)",
				algo.Name, algo.Index, entities.MaxAlgorithms)
		}
		if prev, ok := seen[algo.Index]; ok {
			return nil, errors.Errorf("algorithms %q and %q share index %d",
				prev, algo.Name, algo.Index)
		}
		if algo.ModuleID < 0 || algo.ModuleID >= raw.NModules {
			return nil, errors.Errorf("algorithm %q: module id %d out of range [0, %d)",
				algo.Name, algo.ModuleID, raw.NModules)
		}
		seen[algo.Index] = algo.Name

		menu.Algorithms = append(menu.Algorithms, entities.Algorithm{
			Name:        algo.Name,
			Index:       algo.Index,
			ModuleID:    algo.ModuleID,
			ModuleIndex: algo.ModuleIndex,
			Expression:  algo.Expression,
		})
	}

	return menu, nil
}
