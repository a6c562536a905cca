package entity

// Roles de la aplicación. El rol llega en el JWT; no se consulta la DB por petición.
const (
	RoleAdmin    = "admin"
	RoleOperario = "operario"
)

// Actor identifica a quien ejecuta una operación y su rol.
type Actor struct {
	ID   string
	Role string
}

// Privileged indica si el actor puede aprobar, rechazar o editar solicitudes ajenas.
func (a Actor) Privileged() bool {
	return a.Role == RoleAdmin
}
