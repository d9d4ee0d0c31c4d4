package parser_test

import (
	"testing"

	"github.com/jhoicas/Seriales-api/internal/application/parser"
	"github.com/jhoicas/Seriales-api/internal/domain"
	"github.com/jhoicas/Seriales-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []entity.Device {
	return []entity.Device{
		{CanonicalName: "FMC920", DisplayName: "FMC920", Active: true, UnitsPerSerial: 1},
		{CanonicalName: "FMC003", DisplayName: "FMC003", Active: true, UnitsPerSerial: 1},
		{CanonicalName: "CV200", DisplayName: "CV200 Dashcam", Active: true, UnitsPerSerial: 1},
	}
}

func registry() *parser.Registry {
	return parser.NewRegistry([]parser.Profile{
		{Vendor: "teltonika", Layout: parser.LayoutBlock, StrictSerials: true},
		{Vendor: "jimi", Layout: parser.LayoutCarton, CartonWidth: 5},
		{Vendor: "generic", Layout: parser.LayoutExplicit},
		{Vendor: "simple", Layout: parser.LayoutSingle, ForcedDevice: "FMC920"},
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro de proveedores
// ──────────────────────────────────────────────────────────────────────────────

func TestRegistry_VendorDesconocido(t *testing.T) {
	_, err := registry().Get("desconocido")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_VendorsOrdenados(t *testing.T) {
	assert.Equal(t, []string{"generic", "jimi", "simple", "teltonika"}, registry().Vendors())
}

// ──────────────────────────────────────────────────────────────────────────────
// Layout de bloques: secciones horizontales con el dispositivo encima del
// encabezado y celdas de caja combinadas que se arrastran hacia abajo.
// ──────────────────────────────────────────────────────────────────────────────

func TestBlockLayout_DosBloquesConArrastreDeCaja(t *testing.T) {
	g := parser.Grid{
		{"", "", "", "", ""},
		{"FMC920", "", "", "FMC003", ""},
		{"Box No.", "IMEI", "", "Box No.", "IMEI"},
		{"031", "356307042441013", "", "PALLET-17", "861585042000019"},
		{"", "356307042441021", "", "", "861585042000027"},
		{"032", "356307042441039", "", "", ""},
	}

	a, err := registry().Get("teltonika")
	require.NoError(t, err)
	labels, err := a.Parse(g, testCatalog())
	require.NoError(t, err)
	require.Len(t, labels, 3)

	assert.Equal(t, "FMC920", labels[0].Device)
	assert.Equal(t, "031", labels[0].BoxCode)
	assert.Equal(t, []string{"356307042441013", "356307042441021"}, labels[0].Serials,
		"la celda de caja vacía debe arrastrar la caja anterior")
	assert.Equal(t, 2, labels[0].Qty)

	assert.Equal(t, "FMC003", labels[1].Device)
	assert.Equal(t, "17", labels[1].BoxCode)
	assert.Equal(t, []string{"861585042000019", "861585042000027"}, labels[1].Serials)

	assert.Equal(t, "FMC920", labels[2].Device)
	assert.Equal(t, "032", labels[2].BoxCode)
	assert.Equal(t, []string{"356307042441039"}, labels[2].Serials)
}

func TestBlockLayout_SegundoBloqueIndependiente(t *testing.T) {
	g := parser.Grid{
		{"FMC920", "", "", "FMC003", ""},
		{"Box No.", "IMEI", "", "Box No.", "IMEI"},
		{"031", "356307042441013", "", "PALLET-17", "861585042000019"},
	}
	a, err := registry().Get("teltonika")
	require.NoError(t, err)
	labels, err := a.Parse(g, testCatalog())
	require.NoError(t, err)
	require.Len(t, labels, 2)

	assert.Equal(t, "FMC003", labels[1].Device)
	assert.Equal(t, "17", labels[1].BoxCode, `"PALLET-17" tiene dos segmentos: el código es el segundo`)
	assert.Equal(t, []string{"861585042000019"}, labels[1].Serials)
}

// TestBlockLayout_PrefijoDeDispositivoEnLaCaja: la celda de caja
// "FMC9202MAUWU-041-2" trae el dispositivo como prefijo; debe pisar al del
// encabezado y el código de caja debe ser "041-2".
func TestBlockLayout_PrefijoDeDispositivoEnLaCaja(t *testing.T) {
	g := parser.Grid{
		{"FMC003", ""},
		{"Box No.", "IMEI"},
		{"FMC9202MAUWU-041-2", "356307042441013"},
		{"", "356307042441021"},
	}
	a, err := registry().Get("teltonika")
	require.NoError(t, err)
	labels, err := a.Parse(g, testCatalog())
	require.NoError(t, err)
	require.Len(t, labels, 1)

	assert.Equal(t, "FMC920", labels[0].Device, "el prefijo FMC9202MAUWU debe resolver a FMC920")
	assert.Equal(t, "041-2", labels[0].BoxCode)
	assert.Len(t, labels[0].Serials, 2)
}

func TestBlockLayout_SerialInvalidoSeIgnora(t *testing.T) {
	g := parser.Grid{
		{"FMC920", ""},
		{"Box No.", "IMEI"},
		{"031", "356307042441013"},
		{"", "demasiado corto 123"},
		{"", "12345678901234"}, // 14 dígitos: inválido en modo estricto
	}
	a, err := registry().Get("teltonika")
	require.NoError(t, err)
	labels, err := a.Parse(g, testCatalog())
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, []string{"356307042441013"}, labels[0].Serials)
}

// TestBlockLayout_DispositivoNoResueltoFallaTodo: una sola etiqueta con
// destino desconocido invalida el parse completo; no hay importes a medias.
func TestBlockLayout_DispositivoNoResueltoFallaTodo(t *testing.T) {
	g := parser.Grid{
		{"ZX9999", "", "", "FMC920", ""},
		{"Box No.", "IMEI", "", "Box No.", "IMEI"},
		{"031", "356307042441013", "", "040", "356307042441021"},
	}
	a, err := registry().Get("teltonika")
	require.NoError(t, err)
	_, err = a.Parse(g, testCatalog())
	require.Error(t, err)

	var unresolved *domain.UnresolvedDevicesError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, []string{"ZX9999"}, unresolved.Devices)
}

// TestBlockLayout_BloqueSinDispositivoFallaTodo: encabezado en la primera
// fila, sin nombre de dispositivo encima ni prefijo en las celdas de caja.
// Los seriales válidos no pueden descartarse en silencio.
func TestBlockLayout_BloqueSinDispositivoFallaTodo(t *testing.T) {
	g := parser.Grid{
		{"Box No.", "IMEI"},
		{"031", "356307042441013"},
		{"", "356307042441021"},
	}
	a, err := registry().Get("teltonika")
	require.NoError(t, err)
	labels, err := a.Parse(g, testCatalog())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, labels)
}

func TestBlockLayout_SinEncabezado(t *testing.T) {
	g := parser.Grid{
		{"esto", "no"},
		{"es", "una hoja"},
	}
	a, err := registry().Get("teltonika")
	require.NoError(t, err)
	_, err = a.Parse(g, testCatalog())
	assert.ErrorIs(t, err, domain.ErrNoLayout)
}

// ──────────────────────────────────────────────────────────────────────────────
// Layout de cartón: una fila por serial, dispositivo adivinado del texto del
// cartón y caja derivada del sufijo numérico.
// ──────────────────────────────────────────────────────────────────────────────

func TestCartonLayout_AdivinaDispositivoYDerivaCaja(t *testing.T) {
	g := parser.Grid{
		{"IMEI", "Carton No"},
		{"356307042441013", "CNHYCV200XEU202501"},
		{"356307042441021", "CNHYCV200XEU202501"},
		{"356307042441039", "CNHYCV200XEU202502"},
	}
	a, err := registry().Get("jimi")
	require.NoError(t, err)
	labels, err := a.Parse(g, testCatalog())
	require.NoError(t, err)
	require.Len(t, labels, 2)

	assert.Equal(t, "CV200 Dashcam", labels[0].Device,
		"del texto CNHYCV200XEU… debe salir el código CV200 del catálogo")
	assert.Equal(t, "02501", labels[0].BoxCode, "el código de caja es el sufijo numérico de ancho 5")
	assert.Len(t, labels[0].Serials, 2)
	assert.Equal(t, "02502", labels[1].BoxCode)
}

// TestCartonLayout_FalloReportaElCodigoCompacto: si ningún candidato resuelve,
// el error debe nombrar el código limpio (CV200), no el texto completo del
// cartón.
func TestCartonLayout_FalloReportaElCodigoCompacto(t *testing.T) {
	catalog := []entity.Device{
		{CanonicalName: "FMC920", DisplayName: "FMC920", Active: true},
	}
	g := parser.Grid{
		{"IMEI", "Carton No"},
		{"356307042441013", "CNHYCV200XEU202501"},
		{"356307042441021", "CNHYCV200XEU202502"},
	}
	a, err := registry().Get("jimi")
	require.NoError(t, err)
	_, err = a.Parse(g, catalog)
	require.Error(t, err)

	var unresolved *domain.UnresolvedDevicesError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, []string{"CV200"}, unresolved.Devices)
}

func TestCartonLayout_SinColumnas(t *testing.T) {
	g := parser.Grid{
		{"IMEI", "Fecha"},
		{"356307042441013", "2026-01-10"},
	}
	a, err := registry().Get("jimi")
	require.NoError(t, err)
	_, err = a.Parse(g, testCatalog())
	assert.ErrorIs(t, err, domain.ErrNoLayout)
}

// ──────────────────────────────────────────────────────────────────────────────
// Layout explícito: columnas nombradas con celdas combinadas.
// ──────────────────────────────────────────────────────────────────────────────

func TestExplicitLayout_ColumnasNombradas(t *testing.T) {
	g := parser.Grid{
		{"Modelo", "IMEI", "Caja"},
		{"FMC920", "356307042441013", "041-2"},
		{"", "356307042441021", ""},
		{"FMC003", "861585042000019", "042"},
	}
	a, err := registry().Get("generic")
	require.NoError(t, err)
	labels, err := a.Parse(g, testCatalog())
	require.NoError(t, err)
	require.Len(t, labels, 2)

	assert.Equal(t, "FMC920", labels[0].Device)
	assert.Equal(t, "041-2", labels[0].BoxCode,
		"la columna de caja ya trae el código: se usa tal cual, sin extraer nada")
	assert.Len(t, labels[0].Serials, 2, "device y caja combinados se arrastran de la fila anterior")

	assert.Equal(t, "FMC003", labels[1].Device)
	assert.Equal(t, "042", labels[1].BoxCode)
}

func TestExplicitLayout_UnitsPerSerialMultiplicaQty(t *testing.T) {
	catalog := []entity.Device{
		{CanonicalName: "KITDUO", DisplayName: "Kit Duo", Active: true, UnitsPerSerial: 2},
	}
	g := parser.Grid{
		{"Modelo", "IMEI", "Caja"},
		{"KITDUO", "356307042441013", "050"},
		{"", "356307042441021", ""},
	}
	a, err := registry().Get("generic")
	require.NoError(t, err)
	labels, err := a.Parse(g, catalog)
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, 4, labels[0].Qty, "2 seriales × 2 unidades por serial")
}

// ──────────────────────────────────────────────────────────────────────────────
// Layout de caja única: sin identificador confiable en la hoja.
// ──────────────────────────────────────────────────────────────────────────────

func TestSingleBoxLayout_TodoAUnaCajaSintetica(t *testing.T) {
	g := parser.Grid{
		{"alguna cosa", "356307042441013"},
		{"356307042441021", ""},
		{"notas", "356307042441039"},
	}
	a, err := registry().Get("simple")
	require.NoError(t, err)
	labels, err := a.Parse(g, testCatalog())
	require.NoError(t, err)
	require.Len(t, labels, 1)

	assert.Equal(t, "FMC920", labels[0].Device, "el dispositivo lo fija la configuración, no la hoja")
	assert.Equal(t, "SB-356307", labels[0].BoxCode,
		"el código sintético sale de los primeros dígitos del primer serial")
	assert.Len(t, labels[0].Serials, 3)
}

// TestSingleBoxLayout_Reimportable: el mismo archivo produce siempre la misma
// caja sintética.
func TestSingleBoxLayout_Reimportable(t *testing.T) {
	g := parser.Grid{{"356307042441013"}}
	a, err := registry().Get("simple")
	require.NoError(t, err)

	l1, err := a.Parse(g, testCatalog())
	require.NoError(t, err)
	l2, err := a.Parse(g, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, l1[0].BoxCode, l2[0].BoxCode)
}

func TestSingleBoxLayout_SinDispositivoForzado(t *testing.T) {
	r := parser.NewRegistry([]parser.Profile{
		{Vendor: "roto", Layout: parser.LayoutSingle},
	})
	a, err := r.Get("roto")
	require.NoError(t, err)
	_, err = a.Parse(parser.Grid{{"356307042441013"}}, testCatalog())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
