package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/core/registry"
)

// buildSchema creates the GraphQL schema wired to the controller.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"name":      &graphql.Field{Type: graphql.String},
			"longitude": &graphql.Field{Type: graphql.Float},
			"latitude":  &graphql.Field{Type: graphql.Float},
			"record": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if pl, ok := p.Source.(domain.Place); ok {
						return pl.Record(), nil
					}
					return nil, nil
				},
			},
		},
	})

	candidateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Candidate",
		Fields: graphql.Fields{
			"display_name": &graphql.Field{Type: graphql.String},
			"longitude":    &graphql.Field{Type: graphql.Float},
			"latitude":     &graphql.Field{Type: graphql.Float},
			"record": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if gc, ok := p.Source.(domain.GeocodeCandidate); ok {
						return gc.Record(), nil
					}
					return nil, nil
				},
			},
		},
	})

	legType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteLeg",
		Fields: graphql.Fields{
			"from":            &graphql.Field{Type: placeType},
			"to":              &graphql.Field{Type: placeType},
			"distance_meters": &graphql.Field{Type: graphql.Float},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Route",
		Fields: graphql.Fields{
			"places":       &graphql.Field{Type: graphql.NewList(placeType)},
			"legs":         &graphql.Field{Type: graphql.NewList(legType)},
			"total_meters": &graphql.Field{Type: graphql.Float},
			"closed":       &graphql.Field{Type: graphql.Boolean},
		},
	})

	placeArgs := graphql.FieldConfigArgument{
		"name":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"longitude": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"latitude":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
	}
	placeFromArgs := func(args map[string]interface{}) domain.Place {
		name, _ := args["name"].(string)
		lon, _ := args["longitude"].(float64)
		lat, _ := args["latitude"].(float64)
		return domain.Place{Name: name, Longitude: lon, Latitude: lat}
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"places": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "Places in visiting order",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Controller.Places(), nil
				},
			},
			"route": &graphql.Field{
				Type:        routeType,
				Description: "Legs and length of the current order",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Controller.Route(), nil
				},
			},
			"geocode": &graphql.Field{
				Type:        graphql.NewList(candidateType),
				Description: "Resolve free text into candidate places",
				Args: graphql.FieldConfigArgument{
					"q": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q, _ := p.Args["q"].(string)
					if len(q) > maxQueryLength {
						return nil, errors.New("q is too long")
					}
					return deps.Controller.Resolve(p.Context, q), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addPlace": &graphql.Field{
				Type: graphql.NewList(placeType),
				Args: graphql.FieldConfigArgument{
					"name":      placeArgs["name"],
					"longitude": placeArgs["longitude"],
					"latitude":  placeArgs["latitude"],
					"position":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: registry.Append},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pos, _ := p.Args["position"].(int)
					if _, err := deps.Controller.AddPlace(p.Context, placeFromArgs(p.Args), pos); err != nil {
						return nil, err
					}
					return deps.Controller.Places(), nil
				},
			},
			"removePlace": &graphql.Field{
				Type: graphql.Boolean,
				Args: placeArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Controller.RemovePlace(p.Context, placeFromArgs(p.Args)), nil
				},
			},
			"reorder": &graphql.Field{
				Type: graphql.NewList(placeType),
				Args: graphql.FieldConfigArgument{
					"order": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.Int)))},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					raw, _ := p.Args["order"].([]interface{})
					order := make([]int, 0, len(raw))
					for _, v := range raw {
						i, _ := v.(int)
						order = append(order, i)
					}
					if err := deps.Controller.Reorder(p.Context, order); err != nil {
						return nil, err
					}
					return deps.Controller.Places(), nil
				},
			},
			"optimize": &graphql.Field{
				Type: routeType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Controller.Optimize(p.Context)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
