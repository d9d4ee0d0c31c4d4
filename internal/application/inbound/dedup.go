package inbound

import (
	"fmt"

	"github.com/jhoicas/Seriales-api/internal/domain"
	"github.com/jhoicas/Seriales-api/internal/domain/entity"
	"github.com/jhoicas/Seriales-api/internal/domain/repository"
)

// dedupState estado explícito de deduplicación de una conciliación: los
// seriales que ya existen en el ledger (con su ubicación, para reportar
// conflictos) y los ya vistos en este mismo archivo. Se pasa de paso en
// paso; ninguna función lo muta por fuera.
type dedupState struct {
	existing map[string]repository.ItemLocation
	seen     map[string]struct{}
}

// newDedupState carga en una sola consulta la ubicación de todos los
// seriales del archivo que ya estén registrados.
func newDedupState(itemRepo repository.ItemRepository, labels []Label) (*dedupState, error) {
	var all []string
	for _, l := range labels {
		all = append(all, l.Serials...)
	}
	locs, err := itemRepo.Locate(all)
	if err != nil {
		return nil, fmt.Errorf("consultar seriales existentes: %w", err)
	}
	st := &dedupState{
		existing: make(map[string]repository.ItemLocation, len(locs)),
		seen:     make(map[string]struct{}),
	}
	for _, loc := range locs {
		st.existing[loc.Serial] = loc
	}
	return st, nil
}

// take filtra los seriales insertables de una etiqueta: descarta los que ya
// existen en el ledger y los repetidos dentro del archivo, contándolos en
// los totales, y marca el resto como vistos.
func (st *dedupState) take(serials []string, totals *entity.BatchTotals) []string {
	var insertable []string
	for _, s := range serials {
		if _, exists := st.existing[s]; exists {
			totals.SkippedExisting++
			continue
		}
		if _, dup := st.seen[s]; dup {
			totals.SkippedDuplicateInFile++
			continue
		}
		st.seen[s] = struct{}{}
		insertable = append(insertable, s)
	}
	return insertable
}

// allConflicts lista todos los duplicados (ledger y archivo) para la
// política estricta: cada serial con la caja donde está hoy, o sin caja si
// el duplicado es interno al archivo.
func (st *dedupState) allConflicts(labels []Label) []domain.SerialConflict {
	var conflicts []domain.SerialConflict
	inFile := make(map[string]struct{})
	for _, l := range labels {
		for _, s := range l.Serials {
			if loc, exists := st.existing[s]; exists {
				conflicts = append(conflicts, domain.SerialConflict{Serial: s, BoxCode: loc.BoxCode})
				continue
			}
			if _, dup := inFile[s]; dup {
				conflicts = append(conflicts, domain.SerialConflict{Serial: s})
				continue
			}
			inFile[s] = struct{}{}
		}
	}
	return conflicts
}
