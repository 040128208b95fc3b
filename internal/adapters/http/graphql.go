package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/strollcast/strollcast/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	cityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "City",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"name":           &graphql.Field{Type: graphql.String},
			"location":       &graphql.Field{Type: geoPointType},
			"hero_image_url": &graphql.Field{Type: graphql.String},
			"hero_title":     &graphql.Field{Type: graphql.String},
			"country":        &graphql.Field{Type: graphql.String},
			"state_province": &graphql.Field{Type: graphql.String},
			"tour_count":     &graphql.Field{Type: graphql.Int},
			"distance_km":    &graphql.Field{Type: graphql.Float},
		},
	})

	siteType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Site",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"title":        &graphql.Field{Type: graphql.String},
			"description":  &graphql.Field{Type: graphql.String},
			"location":     &graphql.Field{Type: geoPointType},
			"city":         &graphql.Field{Type: graphql.String},
			"neighborhood": &graphql.Field{Type: graphql.String},
			"image_url":    &graphql.Field{Type: graphql.String},
			"audio_url":    &graphql.Field{Type: graphql.String},
			"rating":       &graphql.Field{Type: graphql.Float},
			"distance":     &graphql.Field{Type: graphql.Float},
		},
	})

	tourStopType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TourStop",
		Fields: graphql.Fields{
			"site_id":   &graphql.Field{Type: graphql.String},
			"title":     &graphql.Field{Type: graphql.String},
			"order":     &graphql.Field{Type: graphql.Int},
			"location":  &graphql.Field{Type: geoPointType},
			"narration": &graphql.Field{Type: graphql.String},
			"audio_url": &graphql.Field{Type: graphql.String},
		},
	})

	tourType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Tour",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.String},
			"name":             &graphql.Field{Type: graphql.String},
			"description":      &graphql.Field{Type: graphql.String},
			"city":             &graphql.Field{Type: graphql.String},
			"neighborhood":     &graphql.Field{Type: graphql.String},
			"location":         &graphql.Field{Type: geoPointType},
			"image_url":        &graphql.Field{Type: graphql.String},
			"audio_url":        &graphql.Field{Type: graphql.String},
			"distance_meters":  &graphql.Field{Type: graphql.Int},
			"duration_minutes": &graphql.Field{Type: graphql.Int},
			"average_rating":   &graphql.Field{Type: graphql.Float},
			"rating_count":     &graphql.Field{Type: graphql.Int},
			"status":           &graphql.Field{Type: graphql.String},
			"stops":            &graphql.Field{Type: graphql.NewList(tourStopType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"cities": &graphql.Field{
				Type:        graphql.NewList(cityType),
				Description: "List all active cities",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Discovery.Cities(p.Context, nil)
				},
			},
			"closestCity": &graphql.Field{
				Type:        cityType,
				Description: "Nearest active city to a location",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					origin := domain.GeoPoint{
						Lat: p.Args["lat"].(float64),
						Lon: p.Args["lon"].(float64),
					}
					return deps.Discovery.ClosestCity(p.Context, origin)
				},
			},
			"tours": &graphql.Field{
				Type:        graphql.NewList(tourType),
				Description: "List published tours, optionally filtered by city/neighborhood",
				Args: graphql.FieldConfigArgument{
					"city":         &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"neighborhood": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					city := p.Args["city"].(string)
					neighborhood := p.Args["neighborhood"].(string)
					return deps.Tours.List(p.Context, domain.TourStatusPublished, city, neighborhood, "")
				},
			},
			"tour": &graphql.Field{
				Type:        tourType,
				Description: "Get a tour by ID with its stop list",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Tours.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"sitesNearby": &graphql.Field{
				Type:        graphql.NewList(siteType),
				Description: "Find sites near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Sites.FindNearby(p.Context, lat, lon, radius, limit)
				},
			},
			"searchSites": &graphql.Field{
				Type:        graphql.NewList(siteType),
				Description: "Search sites by title or keyword (fuzzy matching)",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					limit := p.Args["limit"].(int)
					return deps.Sites.Search(p.Context, q, limit)
				},
			},
			"site": &graphql.Field{
				Type:        siteType,
				Description: "Get a site by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sites.GetByID(p.Context, p.Args["id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
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
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
