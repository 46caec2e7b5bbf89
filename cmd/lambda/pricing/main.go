package main

import (
	"github.com/hightechgrafix/htg-shipping-tools/pkg/server"

	awslambda "github.com/aws/aws-lambda-go/lambda"
)

// Public function: no identity provider, no Supabase secrets.
var connections = server.NewConnectionManager(server.EnvironmentBuilder(server.PricingEndpoints))

func main() {
	awslambda.Start(server.NewAPIGatewayHandler(connections))
}
