package schema

import (
	"fmt"
	"time"

	"crm-graphql/internal/service"
	"crm-graphql/internal/validation"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// resolvers binds root fields to the services that handle them
type resolvers struct {
	services Services
	types    *types
	logger   *zap.Logger
}

// queryFields is the table of read operations
func (r *resolvers) queryFields() graphql.Fields {
	return graphql.Fields{
		"customers": &graphql.Field{
			Type:    graphql.NewList(r.types.customer),
			Resolve: r.customers,
		},
		"products": &graphql.Field{
			Type:    graphql.NewList(r.types.product),
			Resolve: r.products,
		},
		"orders": &graphql.Field{
			Type: graphql.NewList(r.types.order),
			Args: graphql.FieldConfigArgument{
				"orderDate_Gte": &graphql.ArgumentConfig{Type: graphql.DateTime},
			},
			Resolve: r.orders,
		},
	}
}

// mutationFields is the table of write operations
func (r *resolvers) mutationFields() graphql.Fields {
	return graphql.Fields{
		"createCustomer": &graphql.Field{
			Type: r.types.createCustomerPayload,
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(r.types.customerInput)},
			},
			Resolve: r.createCustomer,
		},
		"bulkCreateCustomers": &graphql.Field{
			Type: r.types.bulkCreateCustomersPayload,
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(r.types.customerInput))},
			},
			Resolve: r.bulkCreateCustomers,
		},
		"createProduct": &graphql.Field{
			Type: r.types.createProductPayload,
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(r.types.productInput)},
			},
			Resolve: r.createProduct,
		},
		"createOrder": &graphql.Field{
			Type: r.types.createOrderPayload,
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(r.types.orderInput)},
			},
			Resolve: r.createOrder,
		},
	}
}

func (r *resolvers) customers(p graphql.ResolveParams) (interface{}, error) {
	customers, err := r.services.Queries.Customers(p.Context)
	if err != nil {
		return nil, r.fail("customers", err)
	}
	return customers, nil
}

func (r *resolvers) products(p graphql.ResolveParams) (interface{}, error) {
	products, err := r.services.Queries.Products(p.Context)
	if err != nil {
		return nil, r.fail("products", err)
	}
	return products, nil
}

func (r *resolvers) orders(p graphql.ResolveParams) (interface{}, error) {
	if cutoff, ok := p.Args["orderDate_Gte"].(time.Time); ok {
		orders, err := r.services.Queries.OrdersSince(p.Context, cutoff)
		if err != nil {
			return nil, r.fail("orders", err)
		}
		return orders, nil
	}

	orders, err := r.services.Queries.Orders(p.Context)
	if err != nil {
		return nil, r.fail("orders", err)
	}
	return orders, nil
}

func (r *resolvers) createCustomer(p graphql.ResolveParams) (interface{}, error) {
	input, _ := p.Args["input"].(map[string]interface{})

	result, err := r.services.Customers.CreateCustomer(p.Context, customerInput(input))
	if err != nil {
		return nil, r.fail("createCustomer", err)
	}
	return result, nil
}

func (r *resolvers) bulkCreateCustomers(p graphql.ResolveParams) (interface{}, error) {
	raw, _ := p.Args["input"].([]interface{})

	inputs := make([]service.CustomerInput, 0, len(raw))
	var missing []string
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			missing = append(missing, fmt.Sprintf(validation.MsgMissingEntry, i+1))
			continue
		}
		inputs = append(inputs, customerInput(m))
	}

	result, err := r.services.Customers.BulkCreateCustomers(p.Context, inputs)
	if err != nil {
		return nil, r.fail("bulkCreateCustomers", err)
	}
	if len(missing) == 0 || result == nil {
		return result, nil
	}

	// Null entries are reported ahead of the service's per-entry errors.
	return &service.BulkCreateCustomersResult{
		Customers: result.Customers,
		Errors:    append(missing, result.Errors...),
	}, nil
}

func (r *resolvers) createProduct(p graphql.ResolveParams) (interface{}, error) {
	input, _ := p.Args["input"].(map[string]interface{})

	in := service.ProductInput{Name: stringArg(input, "name")}
	if price, ok := input["price"].(float64); ok {
		in.Price = decimal.NewFromFloat(price)
	}
	if stock, ok := input["stock"].(int); ok {
		in.Stock = &stock
	}

	result, err := r.services.Products.CreateProduct(p.Context, in)
	if err != nil {
		return nil, r.fail("createProduct", err)
	}
	return result, nil
}

func (r *resolvers) createOrder(p graphql.ResolveParams) (interface{}, error) {
	input, _ := p.Args["input"].(map[string]interface{})

	in := service.OrderInput{CustomerID: stringArg(input, "customerId")}
	if ids, ok := input["productIds"].([]interface{}); ok {
		in.ProductIDs = make([]string, 0, len(ids))
		for _, id := range ids {
			// Null entries stay in the list and fail id resolution.
			s, _ := id.(string)
			in.ProductIDs = append(in.ProductIDs, s)
		}
	}
	if date, ok := input["orderDate"].(time.Time); ok {
		in.OrderDate = &date
	}

	result, err := r.services.Orders.CreateOrder(p.Context, in)
	if err != nil {
		return nil, r.fail("createOrder", err)
	}
	return result, nil
}

func (r *resolvers) fail(field string, err error) error {
	r.logger.Error("GraphQL resolver failed", zap.String("field", field), zap.Error(err))
	return err
}

func customerInput(m map[string]interface{}) service.CustomerInput {
	return service.CustomerInput{
		Name:  stringArg(m, "name"),
		Email: stringArg(m, "email"),
		Phone: stringArg(m, "phone"),
	}
}

func stringArg(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
