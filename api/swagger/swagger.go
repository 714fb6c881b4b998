package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Learnytics Insights API",
        "description": "Learning-analytics dashboard backend: KPIs, trends, leaderboard and recommendations",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Insights", "description": "Aggregated dashboard datasets"},
        {"name": "Recommendations", "description": "Per-student learning-style recommendations"},
        {"name": "Data", "description": "File-backed records and CSV import"}
    ],
    "paths": {
        "/insights/summary": {
            "get": {
                "tags": ["Insights"],
                "summary": "Combined KPI, trend, module and completion payload",
                "parameters": [
                    {"name": "start", "in": "query", "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "type": "string", "format": "date"},
                    {"name": "module", "in": "query", "type": "string"},
                    {"name": "student_id", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid filter parameter"}
                }
            }
        },
        "/insights/kpi": {
            "get": {
                "tags": ["Insights"],
                "summary": "Headline KPI figures",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/insights/trend": {
            "get": {
                "tags": ["Insights"],
                "summary": "Per-date average score series",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/insights/modules": {
            "get": {
                "tags": ["Insights"],
                "summary": "Per-module performance breakdown",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/insights/completion": {
            "get": {
                "tags": ["Insights"],
                "summary": "Completion status buckets",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/insights/leaderboard": {
            "get": {
                "tags": ["Insights"],
                "summary": "Ranked student leaderboard",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "module", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/insights/leaderboard/export": {
            "get": {
                "tags": ["Insights"],
                "summary": "Download the leaderboard as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "module", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "File download"}}
            }
        },
        "/insights/student/{studentId}": {
            "get": {
                "tags": ["Insights"],
                "summary": "Per-student drill-down",
                "parameters": [
                    {"name": "studentId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Student not found"}
                }
            }
        },
        "/insights/system": {
            "get": {
                "tags": ["Insights"],
                "summary": "Instrumentation snapshot",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ml/recommendation/{studentId}": {
            "get": {
                "tags": ["Recommendations"],
                "summary": "Learning-style recommendation for one student",
                "parameters": [
                    {"name": "studentId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Student not found or has no activity"}
                }
            }
        },
        "/data/sample": {
            "get": {
                "tags": ["Data"],
                "summary": "Head of the stored snapshot",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/data/import": {
            "post": {
                "tags": ["Data"],
                "summary": "Import records from a CSV upload or inline JSON",
                "consumes": ["multipart/form-data", "application/json"],
                "responses": {
                    "200": {"description": "Imported"},
                    "400": {"description": "No data provided"}
                }
            }
        },
        "/records": {
            "get": {
                "tags": ["Data"],
                "summary": "Filtered, paginated raw records",
                "parameters": [
                    {"name": "start", "in": "query", "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "type": "string", "format": "date"},
                    {"name": "module", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer", "default": 100},
                    {"name": "offset", "in": "query", "type": "integer", "default": 0}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "ErrorBody": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "error"},
                "message": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "pagination": {"type": "object"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
