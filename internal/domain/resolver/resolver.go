// Package resolver resuelve nombres crudos de dispositivo (texto libre del
// proveedor) contra el catálogo. Es una función pura: mismo snapshot del
// catálogo, mismo resultado. De eso depende que el parsing sea reproducible
// y testeable.
package resolver

import (
	"regexp"
	"strings"

	"github.com/jhoicas/Seriales-api/internal/domain/entity"
)

// Puntajes por estrategia, de más a menos específica. Un candidato gana por
// puntaje; a igual puntaje gana el canónico más largo (el prefijo más
// específico) y, de persistir el empate, el orden del catálogo.
const (
	scoreExact        = 400 // canónico idéntico
	scoreDigitsAdjust = 300 // igual tras padding/truncado de dígitos (FMC3→FMC003, FMC9202→FMC920)
	scoreRawHasCanon  = 200 // el texto crudo empieza con el canónico del catálogo
	scoreCanonHasRaw  = 100 // el canónico empieza con el texto crudo (texto truncado)
	scoreNone         = 0
)

var (
	nonAlnumRe  = regexp.MustCompile(`[^A-Z0-9]`)
	codeShapeRe = regexp.MustCompile(`^([A-Z]+)(\d+)$`)
)

// Canonicalize lleva un nombre a su forma canónica: mayúsculas y solo
// caracteres alfanuméricos. Es la misma normalización que usa el catálogo.
func Canonicalize(raw string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToUpper(raw), "")
}

// Resolve devuelve el nombre visible del dispositivo del catálogo que mejor
// corresponde a raw, o ("", false) si ninguna entrada activa supera el umbral.
func Resolve(raw string, catalog []entity.Device) (string, bool) {
	canon := Canonicalize(raw)
	if canon == "" {
		return "", false
	}

	best := entity.Device{}
	bestScore := scoreNone
	for _, d := range catalog {
		if !d.Active || d.CanonicalName == "" {
			continue
		}
		s := score(canon, d.CanonicalName)
		if s > bestScore || (s == bestScore && s > scoreNone && len(d.CanonicalName) > len(best.CanonicalName)) {
			best = d
			bestScore = s
		}
	}
	if bestScore == scoreNone {
		return "", false
	}
	return best.DisplayName, true
}

// score evalúa las estrategias en orden y devuelve la primera que aplica.
func score(canon, entry string) int {
	if canon == entry {
		return scoreExact
	}
	if digitsAdjustMatch(canon, entry) {
		return scoreDigitsAdjust
	}
	if strings.HasPrefix(canon, entry) {
		return scoreRawHasCanon
	}
	if strings.HasPrefix(entry, canon) {
		return scoreCanonHasRaw
	}
	return scoreNone
}

// digitsAdjustMatch aplica las heurísticas numéricas para códigos con forma
// LETRAS+DÍGITOS: rellenar los dígitos a 3 (FMC3 → FMC003) o truncar a los
// tres primeros (FMC9202 → FMC920) y reintentar el match exacto.
func digitsAdjustMatch(canon, entry string) bool {
	m := codeShapeRe.FindStringSubmatch(canon)
	if m == nil {
		return false
	}
	letters, digits := m[1], m[2]
	if len(digits) < 3 {
		padded := strings.Repeat("0", 3-len(digits)) + digits
		if letters+padded == entry {
			return true
		}
	}
	if len(digits) > 3 {
		if letters+digits[:3] == entry {
			return true
		}
	}
	return false
}
