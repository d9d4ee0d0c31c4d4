package parser

import "strings"

// Búsqueda de encabezados. Los proveedores ponen el encabezado en cualquiera
// de las primeras filas, con mayúsculas, espacios y puntuación arbitrarios;
// el match es por substring sobre el token normalizado.
const headerScanRows = 60

// normToken normaliza una celda de encabezado: minúsculas, sin espacios,
// puntos ni guiones bajos.
func normToken(cell string) string {
	s := strings.ToLower(strings.TrimSpace(cell))
	repl := strings.NewReplacer(" ", "", ".", "", "_", "", "-", "")
	return repl.Replace(s)
}

func isBoxHeader(cell string) bool {
	t := normToken(cell)
	return strings.Contains(t, "boxno") || strings.Contains(t, "boxid") || t == "box" || strings.Contains(t, "caja")
}

func isSerialHeader(cell string) bool {
	t := normToken(cell)
	return strings.Contains(t, "imei") || strings.Contains(t, "serial") || strings.Contains(t, "sn")
}

func isDeviceHeader(cell string) bool {
	t := normToken(cell)
	return strings.Contains(t, "device") || strings.Contains(t, "model") || strings.Contains(t, "modelo") || strings.Contains(t, "producto")
}

func isCartonHeader(cell string) bool {
	t := normToken(cell)
	return strings.Contains(t, "carton") || strings.Contains(t, "ctn")
}

// findHeaderRow busca en las primeras headerScanRows filas una fila que
// contenga a la vez un encabezado de caja y uno de serial/IMEI. Devuelve -1
// si no hay ninguna: la hoja no tiene un layout reconocible.
func findHeaderRow(g Grid) int {
	limit := g.Rows()
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for row := 0; row < limit; row++ {
		hasBox, hasSerial := false, false
		for col := 0; col < len(g[row]); col++ {
			cell := g.Cell(row, col)
			if cell == "" {
				continue
			}
			if isBoxHeader(cell) {
				hasBox = true
			}
			if isSerialHeader(cell) {
				hasSerial = true
			}
		}
		if hasBox && hasSerial {
			return row
		}
	}
	return -1
}

// findColumn devuelve la primera columna de la fila cuyo encabezado cumple
// match, o -1.
func findColumn(g Grid, row int, match func(string) bool) int {
	if row < 0 || row >= g.Rows() {
		return -1
	}
	for col := 0; col < len(g[row]); col++ {
		if match(g.Cell(row, col)) {
			return col
		}
	}
	return -1
}
