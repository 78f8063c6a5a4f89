package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           ChartSight API
// @version         0.1.0
// @description     Trading chart analysis: image upload, vision model extraction, history and outcome tracking.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
