// Package schema builds the GraphQL schema that exposes the CRM services.
package schema

import (
	"fmt"

	"crm-graphql/internal/service"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

// Services are the collaborators the root fields call into
type Services struct {
	Customers service.CustomerService
	Products  service.ProductService
	Orders    service.OrderService
	Queries   service.QueryService
}

// New assembles the Query and Mutation roots
func New(services Services, logger *zap.Logger) (graphql.Schema, error) {
	r := &resolvers{
		services: services,
		types:    newTypes(),
		logger:   logger,
	}

	s, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: r.queryFields(),
		}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Mutation",
			Fields: r.mutationFields(),
		}),
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to build graphql schema: %w", err)
	}

	return s, nil
}
