package parser

import (
	"fmt"

	"github.com/jhoicas/Seriales-api/internal/domain"
	"github.com/jhoicas/Seriales-api/internal/domain/entity"
	"github.com/jhoicas/Seriales-api/internal/domain/serial"
)

// singleBoxAdapter layout sin identificador de caja confiable: todos los
// seriales del archivo van a una sola caja sintética y el dispositivo lo
// fija la configuración del proveedor, no la hoja.
type singleBoxAdapter struct {
	profile Profile
}

func (a *singleBoxAdapter) Parse(g Grid, catalog []entity.Device) ([]ParsedLabel, error) {
	if a.profile.ForcedDevice == "" {
		return nil, fmt.Errorf("proveedor %q sin dispositivo forzado configurado: %w",
			a.profile.Vendor, domain.ErrInvalidInput)
	}
	tracker := newDeviceTracker(catalog)
	display, ok := tracker.resolve(a.profile.ForcedDevice)
	if !ok {
		return nil, tracker.err()
	}

	// Sin encabezado que respetar: se recorre toda la grilla y se queda con
	// cualquier celda que valide como serial.
	acc := newLabelAccumulator()
	boxCode := syntheticBoxCode(g)
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < len(g[row]); col++ {
			if s, okSerial := serial.Clean(g.Cell(row, col), a.profile.StrictSerials); okSerial {
				acc.add(display, boxCode, s)
			}
		}
	}
	return acc.labels(catalog), nil
}

// syntheticBoxCode código determinista por contenido del archivo: los
// primeros dígitos del primer serial encontrado, prefijados. Reimportar el
// mismo archivo reutiliza la misma caja en vez de crear otra.
func syntheticBoxCode(g Grid) string {
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < len(g[row]); col++ {
			if s := serial.Normalize(g.Cell(row, col)); len(s) >= serial.MinLen {
				return "SB-" + s[:6]
			}
		}
	}
	return "SB-VACIO"
}
