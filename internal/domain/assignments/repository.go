package assignments

import "context"

type Repository interface {
	Create(ctx context.Context, a PenAssignment) error
	Update(ctx context.Context, a PenAssignment) error
	GetByID(ctx context.Context, id string) (PenAssignment, error)
	ListByPen(ctx context.Context, penID string) ([]PenAssignment, error)

	// HasActiveAssignment responde si el attendant tiene una asignación
	// activa sobre el corral. Es la consulta que usa el scoping: se lee
	// fresca en cada chequeo, nunca se cachea. La firma coincide con el
	// puerto que declara authz para no acoplar los paquetes.
	HasActiveAssignment(ctx context.Context, penID, attendantID string) (bool, error)
}
