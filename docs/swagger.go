// Package docs Trailhead API
//
// @title  Trailhead API
// @version 0.1.0
// @description Tours, reviews and user accounts.
// @host      localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package docs

import (
	_ "trailhead/internal/services/auth"
	_ "trailhead/internal/services/reviews"
	_ "trailhead/internal/services/tours"
	_ "trailhead/internal/services/users"
)
