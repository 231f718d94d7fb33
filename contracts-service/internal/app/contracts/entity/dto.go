package entity

// RequestMeta - сведения о запросе, попадающие в отчет о нарушении
type RequestMeta struct {
	RequestID string
	Subject   string
}

// ViolationFilter - необязательный фильтр списка нарушений
type ViolationFilter struct {
	Schema string `form:"schema"`
}

// SchemaListResponse - ответ GET /api/v1/schemas
type SchemaListResponse struct {
	Schemas []string `json:"schemas"`
	Total   int      `json:"total"`
}
