package resolver_test

import (
	"testing"

	"github.com/jhoicas/Seriales-api/internal/domain/entity"
	"github.com/jhoicas/Seriales-api/internal/domain/resolver"
	"github.com/stretchr/testify/assert"
)

// Catálogo de prueba con los modelos habituales de rastreadores.
func testCatalog() []entity.Device {
	return []entity.Device{
		{CanonicalName: "FMC003", DisplayName: "FMC003", Active: true, UnitsPerSerial: 1},
		{CanonicalName: "FMC920", DisplayName: "FMC920", Active: true, UnitsPerSerial: 1},
		{CanonicalName: "FMC130", DisplayName: "FMC130", Active: true, UnitsPerSerial: 1},
		{CanonicalName: "CV200", DisplayName: "CV200 Dashcam", Active: true, UnitsPerSerial: 1},
		{CanonicalName: "GV58LAU", DisplayName: "GV58 LAU", Active: true, UnitsPerSerial: 1},
	}
}

func TestCanonicalize(t *testing.T) {
	assert.Equal(t, "FMC920", resolver.Canonicalize(" fmc-920 "))
	assert.Equal(t, "CV200", resolver.Canonicalize("cv.200"))
	assert.Equal(t, "", resolver.Canonicalize("  --  "))
}

func TestResolve_MatchExacto(t *testing.T) {
	got, ok := resolver.Resolve("FMC920", testCatalog())
	assert.True(t, ok)
	assert.Equal(t, "FMC920", got)
}

func TestResolve_ExactoIgnoraPuntuacionYCase(t *testing.T) {
	got, ok := resolver.Resolve("fmc-920", testCatalog())
	assert.True(t, ok)
	assert.Equal(t, "FMC920", got, "la canonicalización debe absorber guiones y minúsculas")
}

// ── Ajuste de dígitos ─────────────────────────────────────────────────────────

// TestResolve_PaddingDeDigitos: los proveedores escriben "FMC3" cuando el
// catálogo dice FMC003.
func TestResolve_PaddingDeDigitos(t *testing.T) {
	got, ok := resolver.Resolve("FMC3", testCatalog())
	assert.True(t, ok)
	assert.Equal(t, "FMC003", got, "FMC3 debe rellenarse a FMC003")
}

// TestResolve_TruncadoDeDigitos: "FMC9202" trae un sufijo de variante que el
// catálogo no conoce; se trunca a los tres primeros dígitos.
func TestResolve_TruncadoDeDigitos(t *testing.T) {
	got, ok := resolver.Resolve("FMC9202", testCatalog())
	assert.True(t, ok)
	assert.Equal(t, "FMC920", got, "FMC9202 debe truncarse a FMC920")
}

// ── Prefijos ──────────────────────────────────────────────────────────────────

func TestResolve_CrudoEmpiezaConCanonico(t *testing.T) {
	got, ok := resolver.Resolve("FMC130 4G LTE", testCatalog())
	assert.True(t, ok)
	assert.Equal(t, "FMC130", got, "el texto del proveedor con sufijo comercial debe resolver por prefijo")
}

func TestResolve_CanonicoEmpiezaConCrudo(t *testing.T) {
	got, ok := resolver.Resolve("GV58", testCatalog())
	assert.True(t, ok)
	assert.Equal(t, "GV58 LAU", got, "un nombre truncado debe resolver si es prefijo de un canónico")
}

// TestResolve_GanaElCanonicoMasLargo: con dos entradas que son prefijo del
// mismo crudo, gana la más específica.
func TestResolve_GanaElCanonicoMasLargo(t *testing.T) {
	catalog := []entity.Device{
		{CanonicalName: "FMC1", DisplayName: "FMC1", Active: true},
		{CanonicalName: "FMC130", DisplayName: "FMC130", Active: true},
	}
	got, ok := resolver.Resolve("FMC130PRO", catalog)
	assert.True(t, ok)
	assert.Equal(t, "FMC130", got, "a igual estrategia gana el prefijo más largo")
}

// ── Fallos ────────────────────────────────────────────────────────────────────

func TestResolve_SinMatch(t *testing.T) {
	_, ok := resolver.Resolve("ZX9999", testCatalog())
	assert.False(t, ok)
}

func TestResolve_IgnoraInactivos(t *testing.T) {
	catalog := []entity.Device{
		{CanonicalName: "FMC920", DisplayName: "FMC920", Active: false},
	}
	_, ok := resolver.Resolve("FMC920", catalog)
	assert.False(t, ok, "un dispositivo desactivado no debe resolver aunque el nombre coincida")
}

func TestResolve_CrudoVacio(t *testing.T) {
	_, ok := resolver.Resolve("   ", testCatalog())
	assert.False(t, ok)
}

// TestResolve_Determinista: mismo crudo y mismo snapshot del catálogo deben
// dar siempre el mismo resultado, sin importar cuántas veces se llame.
func TestResolve_Determinista(t *testing.T) {
	catalog := testCatalog()
	first, ok := resolver.Resolve("FMC9202MAUWU", catalog)
	assert.True(t, ok)
	for i := 0; i < 50; i++ {
		got, ok := resolver.Resolve("FMC9202MAUWU", catalog)
		assert.True(t, ok)
		assert.Equal(t, first, got, "Resolve debe ser una función pura del input")
	}
}
