package transport

import (
	"net/http"

	"crm-graphql/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

// GraphQLRequest is the standard GraphQL-over-HTTP request body
type GraphQLRequest struct {
	Query         string                 `json:"query" validate:"required"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// GraphQLHandler executes queries and mutations against the schema
type GraphQLHandler struct {
	schema graphql.Schema
	logger *zap.Logger
}

// NewGraphQLHandler creates a new GraphQLHandler
func NewGraphQLHandler(schema graphql.Schema, logger *zap.Logger) *GraphQLHandler {
	return &GraphQLHandler{
		schema: schema,
		logger: logger,
	}
}

// RegisterRoutes mounts POST /graphql behind the optional rate limiter
func (h *GraphQLHandler) RegisterRoutes(r chi.Router, rateLimiter func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if rateLimiter != nil {
			r.Use(rateLimiter)
		}
		r.Post("/graphql", h.Execute)
	})
}

// Execute runs one GraphQL operation. Resolver failures are reported in the
// errors array with status 200.
func (h *GraphQLHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req GraphQLRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("GraphQL request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})

	if result.HasErrors() {
		h.logger.Warn("GraphQL operation returned errors",
			zap.String("operation", req.OperationName),
			zap.Int("count", len(result.Errors)),
			zap.String("first_error", result.Errors[0].Message),
		)
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}
