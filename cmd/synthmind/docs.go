package main

// General API documentation for swaggo. Run `swag init -g cmd/synthmind/docs.go`
// after changing handler annotations in internal/httpapi.
//
// @title           synthmind API
// @version         1.0
// @description     Chat, image generation and image description over locally cached models.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
