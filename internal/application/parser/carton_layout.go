package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jhoicas/Seriales-api/internal/domain"
	"github.com/jhoicas/Seriales-api/internal/domain/entity"
	"github.com/jhoicas/Seriales-api/internal/domain/serial"
)

// deviceCodeRe forma de código de dispositivo embebido en el texto del
// cartón: letras seguidas de dígitos ("CNHYCV200XEU202501" contiene CV200).
var deviceCodeRe = regexp.MustCompile(`[A-Z]{2,6}\d{3,4}`)

// cartonAdapter layout de una fila por serial: una columna de serial y una
// de cartón. El código de caja es el sufijo numérico del cartón y el
// dispositivo se adivina buscando un código con forma letras+dígitos en el
// texto del cartón de todas las filas y quedándose con el más frecuente que
// el catálogo resuelva.
type cartonAdapter struct {
	profile Profile
}

func (a *cartonAdapter) Parse(g Grid, catalog []entity.Device) ([]ParsedLabel, error) {
	headerRow := findCartonHeaderRow(g)
	serialCol, cartonCol := -1, -1
	if headerRow >= 0 {
		serialCol = findColumn(g, headerRow, isSerialHeader)
		cartonCol = findColumn(g, headerRow, isCartonHeader)
		if cartonCol < 0 {
			cartonCol = findColumn(g, headerRow, isBoxHeader)
		}
	}
	if headerRow < 0 || serialCol < 0 || cartonCol < 0 {
		return nil, domain.ErrNoLayout
	}

	// Primera pasada: adivinar el dispositivo con los cartones de toda la hoja.
	var cartons []string
	for row := headerRow + 1; row < g.Rows(); row++ {
		if c := g.Cell(row, cartonCol); c != "" {
			cartons = append(cartons, c)
		}
	}
	device, guess, ok := guessDevice(cartons, catalog)
	if !ok {
		if guess == "" {
			return nil, domain.ErrNoLayout
		}
		return nil, &domain.UnresolvedDevicesError{Devices: []string{guess}}
	}

	acc := newLabelAccumulator()
	for row := headerRow + 1; row < g.Rows(); row++ {
		s, okSerial := serial.Clean(g.Cell(row, serialCol), a.profile.StrictSerials)
		if !okSerial {
			continue
		}
		boxCode := cartonBoxCode(g.Cell(row, cartonCol), a.profile.CartonWidth)
		if boxCode == "" {
			continue
		}
		acc.add(device, boxCode, s)
	}
	return acc.labels(catalog), nil
}

// findCartonHeaderRow busca la fila de encabezado propia del layout de
// cartones: un encabezado de serial acompañado de uno de cartón o de caja.
// El encabezado canónico "IMEI | Carton No" no trae token de caja, así que
// la búsqueda compartida de caja+serial no lo reconoce.
func findCartonHeaderRow(g Grid) int {
	limit := g.Rows()
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for row := 0; row < limit; row++ {
		hasCarton, hasSerial := false, false
		for col := 0; col < len(g[row]); col++ {
			cell := g.Cell(row, col)
			if cell == "" {
				continue
			}
			if isCartonHeader(cell) || isBoxHeader(cell) {
				hasCarton = true
			}
			if isSerialHeader(cell) {
				hasSerial = true
			}
		}
		if hasCarton && hasSerial {
			return row
		}
	}
	return -1
}

// guessDevice cuenta los candidatos con forma de código en los textos de
// cartón (incluyendo las variantes con letras iniciales recortadas: de
// "HYCV200" salen HYCV200, YCV200 y CV200) y devuelve el más frecuente que
// resuelva contra el catálogo. Si ninguno resuelve, devuelve el candidato
// más frecuente como nombre no resuelto.
func guessDevice(cartons []string, catalog []entity.Device) (display, guess string, ok bool) {
	counts := make(map[string]int)
	for _, c := range cartons {
		for _, m := range deviceCodeRe.FindAllString(strings.ToUpper(c), -1) {
			for v := m; len(v) >= 5; v = v[1:] {
				if !startsWithTwoLetters(v) {
					break
				}
				counts[v]++
			}
		}
	}
	if len(counts) == 0 {
		return "", "", false
	}

	candidates := make([]string, 0, len(counts))
	for c := range counts {
		candidates = append(candidates, c)
	}
	// Orden estable: frecuencia descendente, luego el más largo, luego alfabético.
	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if counts[ci] != counts[cj] {
			return counts[ci] > counts[cj]
		}
		if len(ci) != len(cj) {
			return len(ci) > len(cj)
		}
		return ci < cj
	})

	tracker := newDeviceTracker(catalog)
	for _, c := range candidates {
		if d, resolved := tracker.resolve(c); resolved {
			return d, c, true
		}
	}
	// Nada resolvió: reportar como no resuelto el candidato más compacto de
	// mayor frecuencia (el código sin el ruido del prefijo del cartón).
	best := candidates[0]
	for _, c := range candidates {
		if counts[c] > counts[best] ||
			(counts[c] == counts[best] && (len(c) < len(best) || (len(c) == len(best) && c < best))) {
			best = c
		}
	}
	return "", best, false
}

func startsWithTwoLetters(s string) bool {
	if len(s) < 2 {
		return false
	}
	return isAsciiLetter(s[0]) && isAsciiLetter(s[1])
}

func isAsciiLetter(b byte) bool {
	return b >= 'A' && b <= 'Z'
}
