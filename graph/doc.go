// Package graph exposes the CRM service as a GraphQL API.
//
// The schema is defined in schema.graphql and bound to resolvers with
// github.com/graph-gophers/graphql-go:
//
//	schema, err := graph.NewSchema(svc)
//	http.Handle("/graphql", graph.Handler(schema))
//
// # Queries
//
//	hello: String
//	allCustomers: [Customer]
//	allProducts: [Product]
//	allOrders: [Order]
//
// # Mutations
//
//	createCustomer(name, email, phone)
//	bulkCreateCustomers(input)
//	createProduct(name, price, stock)
//	createOrder(customerId, productIds, orderDate)
//
// # Nested fields
//
// Customer.orders, Order.customer and Order.products are resolved through
// per-request loaders (see package contrib/dataloader), so a list of N
// orders costs one query per relation instead of N.
//
// # Errors
//
// Resolver errors carry the client-facing message of the service error and
// an extensions code: BAD_USER_INPUT, CONFLICT, NOT_FOUND or INTERNAL.
// Bulk creation reports per-record failures in its payload instead.
package graph
