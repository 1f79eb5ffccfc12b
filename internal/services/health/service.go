package health

// Status is the payload served by the health endpoint.
type Status struct {
	OK             bool   `json:"ok"`
	CatalogVersion string `json:"catalogVersion"`
	Enrichment     string `json:"enrichment"`
}

// Service reports readiness of the loaded catalogue.
type Service struct {
	catalogVersion string
	provider       string
}

// NewService constructs a health service for a loaded catalogue version and
// the configured narrative provider ("none" when disabled).
func NewService(catalogVersion, provider string) *Service {
	if provider == "" {
		provider = "none"
	}
	return &Service{catalogVersion: catalogVersion, provider: provider}
}

// Status returns the health payload. The process only serves once a catalogue
// has been validated, so ok is always true here.
func (s *Service) Status() Status {
	return Status{OK: true, CatalogVersion: s.catalogVersion, Enrichment: s.provider}
}
