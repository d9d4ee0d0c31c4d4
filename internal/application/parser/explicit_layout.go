package parser

import (
	"github.com/jhoicas/Seriales-api/internal/domain"
	"github.com/jhoicas/Seriales-api/internal/domain/entity"
	"github.com/jhoicas/Seriales-api/internal/domain/serial"
)

// explicitAdapter layout de columnas nombradas: device, serial y caja vienen
// cada uno en su propia columna. No hay nada que inferir; solo resolver y
// validar.
type explicitAdapter struct {
	profile Profile
}

func (a *explicitAdapter) Parse(g Grid, catalog []entity.Device) ([]ParsedLabel, error) {
	headerRow := findHeaderRow(g)
	if headerRow < 0 {
		return nil, domain.ErrNoLayout
	}
	deviceCol := findColumn(g, headerRow, isDeviceHeader)
	serialCol := findColumn(g, headerRow, isSerialHeader)
	boxCol := findColumn(g, headerRow, isBoxHeader)
	if deviceCol < 0 || serialCol < 0 || boxCol < 0 {
		return nil, domain.ErrNoLayout
	}

	tracker := newDeviceTracker(catalog)
	acc := newLabelAccumulator()
	lastDevice, lastBox := "", ""

	for row := headerRow + 1; row < g.Rows(); row++ {
		// Celdas combinadas: device y caja se arrastran de la última fila
		// que los trajo.
		if c := g.Cell(row, deviceCol); c != "" {
			lastDevice = c
		}
		if c := g.Cell(row, boxCol); c != "" {
			lastBox = c
		}
		s, ok := serial.Clean(g.Cell(row, serialCol), a.profile.StrictSerials)
		if !ok || lastDevice == "" || lastBox == "" {
			continue
		}
		display, ok := tracker.resolve(lastDevice)
		if !ok {
			continue
		}
		// La columna de caja ya es el código: no se infiere nada de la celda.
		acc.add(display, lastBox, s)
	}

	if err := tracker.err(); err != nil {
		return nil, err
	}
	return acc.labels(catalog), nil
}
