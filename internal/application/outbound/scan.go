package outbound

import (
	"strconv"
	"strings"

	"github.com/jhoicas/Seriales-api/internal/domain"
	"github.com/jhoicas/Seriales-api/internal/domain/serial"
)

// Modos de resolución del escaneo.
const (
	ModeSerial = "serial" // un serial suelto
	ModeBox    = "box"    // payload estructurado que identifica una caja completa
	ModeBulk   = "bulk"   // texto libre con varios seriales embebidos
)

// Scan payload de salida ya interpretado.
type Scan struct {
	Mode        string
	Serial      string   // modo serial
	Serials     []string // modo bulk
	BoxCode     string   // modo box
	Device      string   // modo box: nombre de dispositivo (crudo, se resuelve contra catálogo)
	MasterBoxNo string   // modo box, opcional
	Qty         int      // declarado en el payload; informativo
}

// ParseScan interpreta el texto del escáner. Tres formas:
//   - dígitos sueltos (14–17 tras limpiar) → un serial;
//   - pares CLAVE:VALOR unidos por "|" (BOX, DEV, MASTER, QTY y el legado
//     IMEI como lista separada por comas) → caja o lista de seriales;
//   - texto libre con varias corridas de dígitos → bulk.
func ParseScan(payload string) (*Scan, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, domain.ErrEmptyScan
	}

	if strings.Contains(payload, ":") {
		if sc, ok := parseKeyed(payload); ok {
			return sc, nil
		}
	}

	// El lector suele meter separadores dentro del propio serial
	// ("356307-042441013"): limpiar el payload entero antes de buscar
	// corridas sueltas.
	if s, ok := serial.Clean(payload, false); ok {
		return &Scan{Mode: ModeSerial, Serial: s}, nil
	}

	runs := serial.ExtractAll(payload)
	switch len(runs) {
	case 0:
		return nil, domain.ErrEmptyScan
	case 1:
		return &Scan{Mode: ModeSerial, Serial: runs[0]}, nil
	default:
		return &Scan{Mode: ModeBulk, Serials: runs}, nil
	}
}

// parseKeyed interpreta el formato CLAVE:VALOR|CLAVE:VALOR. Devuelve ok=false
// si ninguna clave es reconocida (el payload era texto libre con dos puntos).
func parseKeyed(payload string) (*Scan, bool) {
	sc := &Scan{}
	recognized := false
	for _, part := range strings.Split(payload, "|") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])
		switch key {
		case "BOX":
			sc.BoxCode = val
			recognized = true
		case "DEV":
			sc.Device = val
			recognized = true
		case "MASTER":
			sc.MasterBoxNo = val
			recognized = true
		case "QTY":
			sc.Qty, _ = strconv.Atoi(val)
			recognized = true
		case "IMEI":
			// Formato legado: lista de IMEIs separada por comas, deduplicada.
			seen := make(map[string]struct{}, len(sc.Serials))
			for _, s := range sc.Serials {
				seen[s] = struct{}{}
			}
			for _, raw := range strings.Split(val, ",") {
				if s, ok := serial.Clean(raw, false); ok {
					if _, dup := seen[s]; !dup {
						seen[s] = struct{}{}
						sc.Serials = append(sc.Serials, s)
					}
				}
			}
			recognized = true
		}
	}
	if !recognized {
		return nil, false
	}
	if len(sc.Serials) > 0 {
		if len(sc.Serials) == 1 && sc.BoxCode == "" {
			return &Scan{Mode: ModeSerial, Serial: sc.Serials[0], Qty: sc.Qty}, true
		}
		sc.Mode = ModeBulk
		return sc, true
	}
	if sc.BoxCode == "" {
		return nil, false
	}
	sc.Mode = ModeBox
	return sc, true
}
