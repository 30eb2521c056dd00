package dto

// MaxPageLimit tope de elementos por página en los listados de ventas y envíos.
const MaxPageLimit = 100

// PageRequest ?limit= y ?offset= de los listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize aplica limit=20 por defecto, lo acota a MaxPageLimit y descarta offsets negativos.
func (p PageRequest) Normalize() PageRequest {
	switch {
	case p.Limit <= 0:
		p.Limit = 20
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// PageResponse página devuelta; Count es la cantidad de elementos incluidos.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
