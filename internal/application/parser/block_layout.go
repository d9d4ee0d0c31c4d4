package parser

import (
	"fmt"

	"github.com/jhoicas/Seriales-api/internal/domain"
	"github.com/jhoicas/Seriales-api/internal/domain/entity"
	"github.com/jhoicas/Seriales-api/internal/domain/serial"
)

// Ventana de búsqueda de la columna IMEI de un bloque y distancia mínima
// entre inicios de bloque (los encabezados suelen venir duplicados en
// columnas contiguas por celdas combinadas).
const (
	blockSerialWindow = 20
	blockMinGap       = 2
)

// block un par (columna de caja, columna de serial) de una sección horizontal.
type block struct {
	boxCol    int
	serialCol int
	device    string // nombre crudo vigente del bloque
	lastBox   string // última celda de caja no vacía (celdas combinadas)
}

// blockAdapter layout de secciones horizontales repetidas: el proveedor pone
// varios pares caja/IMEI uno al lado del otro, con el nombre del dispositivo
// encima del encabezado de cada sección.
type blockAdapter struct {
	profile Profile
}

func (a *blockAdapter) Parse(g Grid, catalog []entity.Device) ([]ParsedLabel, error) {
	headerRow := findHeaderRow(g)
	if headerRow < 0 {
		return nil, domain.ErrNoLayout
	}

	blocks := findBlocks(g, headerRow)
	if len(blocks) == 0 {
		return nil, domain.ErrNoLayout
	}

	tracker := newDeviceTracker(catalog)
	acc := newLabelAccumulator()

	for row := headerRow + 1; row < g.Rows(); row++ {
		for i := range blocks {
			b := &blocks[i]

			boxCell := g.Cell(row, b.boxCol)
			if boxCell == "" && b.boxCol+1 < b.serialCol {
				// Celda combinada u hoja corrida: probar la columna adyacente,
				// siempre que no sea la propia columna de seriales.
				boxCell = g.Cell(row, b.boxCol+1)
			}
			if boxCell != "" {
				b.lastBox = boxCell
				// La celda de caja puede traer el dispositivo como prefijo
				// antes del guion; si es así, pasa a ser el dispositivo
				// vigente del bloque.
				if p := devicePrefix(boxCell); p != "" {
					b.device = p
				}
			}

			s, ok := serial.Clean(g.Cell(row, b.serialCol), a.profile.StrictSerials)
			if !ok || b.lastBox == "" {
				continue
			}
			if b.device == "" {
				// Hay seriales válidos pero el bloque nunca declaró dispositivo
				// (ni encima del encabezado ni como prefijo de caja). Descartar
				// las filas en silencio dejaría un import parcial.
				return nil, fmt.Errorf("bloque en la columna %d con seriales pero sin dispositivo: %w",
					b.boxCol, domain.ErrInvalidInput)
			}
			display, ok := tracker.resolve(b.device)
			if !ok {
				continue
			}
			acc.add(display, extractBoxCode(b.lastBox), s)
		}
	}

	if err := tracker.err(); err != nil {
		return nil, err
	}
	return acc.labels(catalog), nil
}

// findBlocks arma los bloques del encabezado: por cada columna "box no"
// busca la columna "imei" más cercana dentro de la ventana, y descarta
// inicios a menos de blockMinGap de un bloque ya armado. El dispositivo
// inicial del bloque es la celda inmediatamente encima del encabezado.
func findBlocks(g Grid, headerRow int) []block {
	var blocks []block
	cols := g.Cols()
	for col := 0; col < cols; col++ {
		if !isBoxHeader(g.Cell(headerRow, col)) {
			continue
		}
		if nearExisting(blocks, col) {
			continue
		}
		serialCol := -1
		for c := col + 1; c <= col+blockSerialWindow && c < cols; c++ {
			if isSerialHeader(g.Cell(headerRow, c)) {
				serialCol = c
				break
			}
		}
		if serialCol < 0 {
			continue
		}
		blocks = append(blocks, block{
			boxCol:    col,
			serialCol: serialCol,
			device:    g.Cell(headerRow-1, col),
		})
	}
	return blocks
}

func nearExisting(blocks []block, col int) bool {
	for _, b := range blocks {
		if col-b.boxCol <= blockMinGap && col-b.boxCol >= -blockMinGap {
			return true
		}
	}
	return false
}
