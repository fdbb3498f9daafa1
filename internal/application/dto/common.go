package dto

// MaxPageLimit tope de registros por página en cualquier listado.
const MaxPageLimit = 100

// PageRequest limit/offset de los listados (?limit=&offset=).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage normaliza la página: limit en [1, MaxPageLimit] (20 si no viene), offset >= 0.
func (p *PageRequest) DefaultPage() {
	switch {
	case p.Limit <= 0:
		p.Limit = 20
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// Response eco de la página pedida.
func (p PageRequest) Response() PageResponse {
	return PageResponse{Limit: p.Limit, Offset: p.Offset}
}

type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse cuerpo de error HTTP. Code es estable (lo usa el front); Message va en português.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
