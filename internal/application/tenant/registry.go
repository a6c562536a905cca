package tenant

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/tu-usuario/stockbook/internal/domain"
	"github.com/tu-usuario/stockbook/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// codePattern limita los códigos saneados al conjunto seguro para nombrar
// recursos en disco (schemas): minúsculas, dígitos y guion bajo, inicia con letra.
var codePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)

// SanitizeCode normaliza un identificador de sede y valida el resultado.
// Mapea mayúsculas a minúsculas y '-'/' ' a '_'; cualquier otro carácter fuera
// del conjunto seguro invalida el código.
func SanitizeCode(tenantID string) (string, error) {
	code := strings.ToLower(strings.TrimSpace(tenantID))
	code = strings.NewReplacer("-", "_", " ", "_").Replace(code)
	if !codePattern.MatchString(code) {
		return "", fmt.Errorf("%w: %q", domain.ErrTenantCode, tenantID)
	}
	return code, nil
}

// Registry resuelve códigos de sede a su Store, aprovisionando en el primer uso.
// El aprovisionamiento concurrente del mismo código se colapsa con singleflight:
// nunca se crean dos almacenes divergentes para la misma sede. Un fallo de
// aprovisionamiento no se cachea; la siguiente resolución reintenta.
type Registry struct {
	factory Factory
	log     *logger.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	stores map[string]*Store
}

// NewRegistry construye el registro.
func NewRegistry(factory Factory, log *logger.Logger) *Registry {
	return &Registry{
		factory: factory,
		log:     log,
		stores:  make(map[string]*Store),
	}
}

// Resolve devuelve el Store de la sede, creándolo y aprovisionándolo si es el
// primer acceso.
func (r *Registry) Resolve(ctx context.Context, tenantID string) (*Store, error) {
	code, err := SanitizeCode(tenantID)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	store := r.stores[code]
	r.mu.RUnlock()
	if store != nil {
		return store, nil
	}

	v, err, _ := r.group.Do(code, func() (any, error) {
		// Releer bajo el vuelo: otro caller pudo completar el aprovisionamiento.
		r.mu.RLock()
		existing := r.stores[code]
		r.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		st, err := r.factory.Provision(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("aprovisionar sede %s: %w", code, err)
		}
		r.mu.Lock()
		r.stores[code] = st
		r.mu.Unlock()
		r.log.Info().Str("tenant", code).Msg("sede aprovisionada")
		return st, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

// Close cierra todos los handles del registro. Tras Close el registro queda vacío.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for code, store := range r.stores {
		store.Close()
		delete(r.stores, code)
	}
}
