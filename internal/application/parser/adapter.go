package parser

import (
	"fmt"
	"sort"

	"github.com/jhoicas/Seriales-api/internal/domain"
	"github.com/jhoicas/Seriales-api/internal/domain/entity"
	"github.com/jhoicas/Seriales-api/internal/domain/resolver"
)

// Layouts soportados. Los formatos de proveedor son finitos y enumerados:
// cada vendor se mapea por configuración a uno de estos cuatro.
const (
	LayoutBlock    = "block"    // secciones horizontales repetidas (pares columna caja / columna IMEI)
	LayoutCarton   = "carton"   // una fila por serial, caja derivada de la celda de cartón
	LayoutExplicit = "explicit" // columnas nombradas: device, serial, box
	LayoutSingle   = "single"   // sin caja confiable: una caja sintética por archivo, device forzado
)

// Profile configuración de un proveedor: layout y ajustes.
type Profile struct {
	Vendor        string
	Layout        string
	StrictSerials bool   // exige IMEI de 15 dígitos exactos
	ForcedDevice  string // layout single: nombre visible fijado por configuración
	CartonWidth   int    // layout carton: ancho del sufijo numérico (default 5)
}

// Adapter un parser por layout de proveedor. Todos comparten las primitivas
// de encabezados, seriales y códigos de caja de este paquete.
type Adapter interface {
	// Parse convierte la grilla en etiquetas agrupadas por (device, box_code).
	// Si algún nombre de dispositivo no resuelve contra el catálogo, el parse
	// completo falla con *domain.UnresolvedDevicesError.
	Parse(g Grid, catalog []entity.Device) ([]ParsedLabel, error)
}

// Registry resuelve el vendor tag de una petición a su adaptador.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry construye el registro a partir de los perfiles configurados.
func NewRegistry(profiles []Profile) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(profiles))}
	for _, p := range profiles {
		if p.CartonWidth <= 0 {
			p.CartonWidth = 5
		}
		switch p.Layout {
		case LayoutBlock:
			r.adapters[p.Vendor] = &blockAdapter{profile: p}
		case LayoutCarton:
			r.adapters[p.Vendor] = &cartonAdapter{profile: p}
		case LayoutExplicit:
			r.adapters[p.Vendor] = &explicitAdapter{profile: p}
		case LayoutSingle:
			r.adapters[p.Vendor] = &singleBoxAdapter{profile: p}
		}
	}
	return r
}

// Get devuelve el adaptador del vendor, o error si no está registrado.
func (r *Registry) Get(vendor string) (Adapter, error) {
	a, ok := r.adapters[vendor]
	if !ok {
		return nil, fmt.Errorf("proveedor %q no registrado: %w", vendor, domain.ErrInvalidInput)
	}
	return a, nil
}

// Vendors lista los vendor tags registrados (para la UI de carga).
func (r *Registry) Vendors() []string {
	out := make([]string, 0, len(r.adapters))
	for v := range r.adapters {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// deviceTracker memoriza resoluciones de nombres crudos contra el snapshot
// del catálogo y acumula los que fallan. Un solo fallo invalida el parse:
// una etiqueta con destino desconocido no puede importarse a medias.
type deviceTracker struct {
	catalog    []entity.Device
	cache      map[string]string
	unresolved []string
	seenFail   map[string]struct{}
}

func newDeviceTracker(catalog []entity.Device) *deviceTracker {
	return &deviceTracker{
		catalog:  catalog,
		cache:    make(map[string]string),
		seenFail: make(map[string]struct{}),
	}
}

// resolve devuelve el nombre visible del catálogo para raw; si no resuelve,
// lo registra como no resuelto y devuelve ok=false.
func (t *deviceTracker) resolve(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if display, ok := t.cache[raw]; ok {
		return display, display != ""
	}
	display, ok := resolver.Resolve(raw, t.catalog)
	if !ok {
		t.cache[raw] = ""
		t.fail(raw)
		return "", false
	}
	t.cache[raw] = display
	return display, true
}

func (t *deviceTracker) fail(raw string) {
	if _, dup := t.seenFail[raw]; dup {
		return
	}
	t.seenFail[raw] = struct{}{}
	t.unresolved = append(t.unresolved, raw)
}

// err devuelve el error acumulado de dispositivos no resueltos, o nil.
func (t *deviceTracker) err() error {
	if len(t.unresolved) == 0 {
		return nil
	}
	return &domain.UnresolvedDevicesError{Devices: t.unresolved}
}
