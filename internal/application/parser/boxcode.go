package parser

import (
	"regexp"
	"strings"
)

var (
	hasLetterRe     = regexp.MustCompile(`[A-Za-z]`)
	trailingDigitRe = regexp.MustCompile(`\d+$`)
)

// extractBoxCode saca el código de caja de una celda con segmentos separados
// por guion. Reglas, en orden:
//   - ≥3 segmentos y el primero contiene letras (prefijo de dispositivo):
//     el código es el 2.º y 3.º segmento unidos por guion.
//   - 2 segmentos: el código es el 2.º.
//   - en cualquier otro caso, el último segmento.
//
// "FMC9202MAUWU-041-2" → "041-2"; "PALLET-17" → "17"; "031" → "031".
// La extracción depende solo del valor de la celda, nunca de la columna de
// la que se leyó.
func extractBoxCode(cell string) string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return ""
	}
	segs := strings.Split(cell, "-")
	if len(segs) >= 3 && hasLetterRe.MatchString(segs[0]) {
		return strings.TrimSpace(segs[1]) + "-" + strings.TrimSpace(segs[2])
	}
	if len(segs) == 2 {
		return strings.TrimSpace(segs[1])
	}
	return strings.TrimSpace(segs[len(segs)-1])
}

// devicePrefix devuelve el prefijo de dispositivo embebido en una celda de
// caja ("FMC9202MAUWU-041-2" → "FMC9202MAUWU"), o "" si el primer segmento
// no tiene letras o la celda tiene menos de tres segmentos. En celdas de dos
// segmentos ("PALLET-17") el primero es un prefijo descartable, no un
// dispositivo: espejo de la regla de dos segmentos de extractBoxCode.
func devicePrefix(cell string) string {
	segs := strings.Split(strings.TrimSpace(cell), "-")
	if len(segs) < 3 {
		return ""
	}
	first := strings.TrimSpace(segs[0])
	if !hasLetterRe.MatchString(first) {
		return ""
	}
	return first
}

// cartonBoxCode deriva el código de caja de una celda de cartón: sufijo
// numérico de ancho fijo. "CNHYCV200XEU202501" con ancho 5 → "02501".
func cartonBoxCode(cell string, width int) string {
	run := trailingDigitRe.FindString(strings.TrimSpace(cell))
	if run == "" {
		return ""
	}
	if width > 0 && len(run) > width {
		return run[len(run)-width:]
	}
	return run
}
