// Package parser convierte las hojas de cálculo de los proveedores (como
// grilla de celdas) en un conjunto uniforme de etiquetas ParsedLabel,
// validadas contra el catálogo de dispositivos. Un adaptador por layout de
// proveedor; todos comparten la detección de encabezados, la validación de
// seriales y la extracción de códigos de caja.
package parser

import "strings"

// Grid la hoja como grilla de celdas (filas × columnas). Es la interfaz de
// ingesta: el colaborador que lee el xlsx entrega aquí solo texto plano.
type Grid [][]string

// Cell devuelve la celda (row, col) recortada, o "" si está fuera de rango.
// Las hojas reales traen filas de largo desigual; todo acceso pasa por aquí.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Rows cantidad de filas.
func (g Grid) Rows() int { return len(g) }

// Cols ancho máximo entre todas las filas.
func (g Grid) Cols() int {
	max := 0
	for _, r := range g {
		if len(r) > max {
			max = len(r)
		}
	}
	return max
}
