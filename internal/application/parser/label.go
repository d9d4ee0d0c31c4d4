package parser

import (
	"sort"

	"github.com/jhoicas/Seriales-api/internal/domain/entity"
)

// ParsedLabel salida neutra del parse: un dispositivo resuelto, una caja y
// sus seriales únicos. Qty ya incorpora las unidades por serial del catálogo.
type ParsedLabel struct {
	Device  string   `json:"device"` // nombre visible del catálogo
	BoxCode string   `json:"box_code"`
	Serials []string `json:"serials"` // normalizados, sin duplicados
	Qty     int      `json:"qty"`    // len(Serials) × UnitsPerSerial
}

// labelAccumulator agrupa triples (device, box_code, serial) conservando el
// orden de primera aparición de cada etiqueta y deduplicando seriales dentro
// de la etiqueta.
type labelAccumulator struct {
	order  []labelKey
	groups map[labelKey]map[string]struct{}
}

type labelKey struct {
	device  string
	boxCode string
}

func newLabelAccumulator() *labelAccumulator {
	return &labelAccumulator{groups: make(map[labelKey]map[string]struct{})}
}

func (a *labelAccumulator) add(device, boxCode, serial string) {
	k := labelKey{device: device, boxCode: boxCode}
	set, ok := a.groups[k]
	if !ok {
		set = make(map[string]struct{})
		a.groups[k] = set
		a.order = append(a.order, k)
	}
	set[serial] = struct{}{}
}

// labels materializa las etiquetas. Los seriales se ordenan para que el
// resultado sea determinista independiente del orden de inserción en el set.
func (a *labelAccumulator) labels(catalog []entity.Device) []ParsedLabel {
	units := make(map[string]int, len(catalog))
	for _, d := range catalog {
		units[d.DisplayName] = d.UnitsPerSerial
	}
	out := make([]ParsedLabel, 0, len(a.order))
	for _, k := range a.order {
		set := a.groups[k]
		serials := make([]string, 0, len(set))
		for s := range set {
			serials = append(serials, s)
		}
		sort.Strings(serials)
		u := units[k.device]
		if u <= 0 {
			u = 1
		}
		out = append(out, ParsedLabel{
			Device:  k.device,
			BoxCode: k.boxCode,
			Serials: serials,
			Qty:     len(serials) * u,
		})
	}
	return out
}
