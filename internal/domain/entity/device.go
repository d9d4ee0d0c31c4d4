package entity

// Device entrada del catálogo de dispositivos. El catálogo es un colaborador
// de solo lectura para este núcleo: aquí nunca se crea ni se edita.
type Device struct {
	ID             string
	CanonicalName  string // forma normalizada (mayúsculas, solo alfanumérico) usada para matching
	DisplayName    string // nombre visible en UI y en ParsedLabel
	Active         bool
	UnitsPerSerial int // unidades físicas por serial (normalmente 1; kits > 1)
}
