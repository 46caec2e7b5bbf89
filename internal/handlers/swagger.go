package handlers

// @title HTG Admin and Quoting API
// @version 1.0
// @description Admin user management and screen-print price lookup backed by Supabase

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the Supabase access token.

// @tag.name admin
// @tag.description Admin-only account operations

// @tag.name pricing
// @tag.description Public price lookups

// @tag.name health
// @tag.description Service health
