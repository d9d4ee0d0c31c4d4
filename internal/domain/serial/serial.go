// Package serial contiene las primitivas de validación y extracción de
// seriales (IMEI) compartidas por todos los parsers de proveedor y por el
// motor de salidas.
package serial

import (
	"regexp"
	"strings"
)

// Longitudes aceptadas tras eliminar los no-dígitos. Los proveedores
// estrictos exigen el IMEI de 15 dígitos exacto.
const (
	MinLen    = 14
	MaxLen    = 17
	StrictLen = 15
)

var digitRunRe = regexp.MustCompile(`\d+`)

// Normalize elimina todo lo que no sea dígito.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid indica si raw contiene un serial aceptable (14–17 dígitos).
func Valid(raw string) bool {
	n := len(Normalize(raw))
	return n >= MinLen && n <= MaxLen
}

// ValidStrict indica si raw es un IMEI estricto de 15 dígitos.
func ValidStrict(raw string) bool {
	return len(Normalize(raw)) == StrictLen
}

// Clean devuelve el serial normalizado y si es válido. Los parsers deben
// guardar siempre la forma normalizada, nunca la celda cruda.
func Clean(raw string, strict bool) (string, bool) {
	s := Normalize(raw)
	if strict {
		return s, len(s) == StrictLen
	}
	return s, len(s) >= MinLen && len(s) <= MaxLen
}

// ExtractAll extrae todas las corridas de 14–17 dígitos embebidas en un texto
// libre (modo bulk del escaneo de salida), deduplicadas en orden de aparición.
// Las corridas más largas se descartan completas: recortar un número de 18
// dígitos produciría un serial falso.
func ExtractAll(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range digitRunRe.FindAllString(text, -1) {
		if len(m) < MinLen || len(m) > MaxLen {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
