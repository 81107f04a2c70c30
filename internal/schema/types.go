package schema

import (
	"crm-graphql/internal/domain"
	"crm-graphql/internal/service"

	"github.com/graphql-go/graphql"
)

// types holds the object and input types shared by the operation tables
type types struct {
	customer *graphql.Object
	product  *graphql.Object
	order    *graphql.Object

	customerInput *graphql.InputObject
	productInput  *graphql.InputObject
	orderInput    *graphql.InputObject

	createCustomerPayload      *graphql.Object
	bulkCreateCustomersPayload *graphql.Object
	createProductPayload       *graphql.Object
	createOrderPayload         *graphql.Object
}

func newTypes() *types {
	t := &types{}

	t.customer = graphql.NewObject(graphql.ObjectConfig{
		Name: "Customer",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.Customer).ID.String(), nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.Customer).Name, nil
				},
			},
			"email": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.Customer).Email, nil
				},
			},
			"phone": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if phone := p.Source.(*domain.Customer).Phone; phone != "" {
						return phone, nil
					}
					return nil, nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.Customer).CreatedAt, nil
				},
			},
		},
	})

	t.product = graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.Product).ID.String(), nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.Product).Name, nil
				},
			},
			"price": &graphql.Field{
				Type: graphql.NewNonNull(Decimal),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.Product).Price, nil
				},
			},
			"stock": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.Product).Stock, nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.Product).CreatedAt, nil
				},
			},
		},
	})

	t.order = graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.Order).ID.String(), nil
				},
			},
			"customer": &graphql.Field{
				Type: t.customer,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if c := p.Source.(*domain.Order).Customer; c != nil {
						return c, nil
					}
					return nil, nil
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewList(t.product),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.Order).Products, nil
				},
			},
			"orderDate": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.Order).OrderDate, nil
				},
			},
			"totalAmount": &graphql.Field{
				Type: graphql.NewNonNull(Decimal),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.Order).TotalAmount, nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*domain.Order).CreatedAt, nil
				},
			},
		},
	})

	t.customerInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CustomerInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"email": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"phone": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	t.productInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ProductInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"price": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"stock": &graphql.InputObjectFieldConfig{Type: graphql.Int},
		},
	})

	t.orderInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "OrderInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"customerId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
			"productIds": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.ID))},
			"orderDate":  &graphql.InputObjectFieldConfig{Type: graphql.DateTime},
		},
	})

	errorsField := func(errs func(interface{}) []string) *graphql.Field {
		return &graphql.Field{
			Type: graphql.NewList(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return errs(p.Source), nil
			},
		}
	}

	t.createCustomerPayload = graphql.NewObject(graphql.ObjectConfig{
		Name: "CreateCustomerPayload",
		Fields: graphql.Fields{
			"customer": &graphql.Field{
				Type: t.customer,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if c := p.Source.(*service.CreateCustomerResult).Customer; c != nil {
						return c, nil
					}
					return nil, nil
				},
			},
			"message": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*service.CreateCustomerResult).Message, nil
				},
			},
			"errors": errorsField(func(src interface{}) []string {
				return src.(*service.CreateCustomerResult).Errors
			}),
		},
	})

	t.bulkCreateCustomersPayload = graphql.NewObject(graphql.ObjectConfig{
		Name: "BulkCreateCustomersPayload",
		Fields: graphql.Fields{
			"customers": &graphql.Field{
				Type: graphql.NewList(t.customer),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*service.BulkCreateCustomersResult).Customers, nil
				},
			},
			"errors": errorsField(func(src interface{}) []string {
				return src.(*service.BulkCreateCustomersResult).Errors
			}),
		},
	})

	t.createProductPayload = graphql.NewObject(graphql.ObjectConfig{
		Name: "CreateProductPayload",
		Fields: graphql.Fields{
			"product": &graphql.Field{
				Type: t.product,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if product := p.Source.(*service.CreateProductResult).Product; product != nil {
						return product, nil
					}
					return nil, nil
				},
			},
			"errors": errorsField(func(src interface{}) []string {
				return src.(*service.CreateProductResult).Errors
			}),
		},
	})

	t.createOrderPayload = graphql.NewObject(graphql.ObjectConfig{
		Name: "CreateOrderPayload",
		Fields: graphql.Fields{
			"order": &graphql.Field{
				Type: t.order,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if order := p.Source.(*service.CreateOrderResult).Order; order != nil {
						return order, nil
					}
					return nil, nil
				},
			},
			"errors": errorsField(func(src interface{}) []string {
				return src.(*service.CreateOrderResult).Errors
			}),
		},
	})

	return t
}
