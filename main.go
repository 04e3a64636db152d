package main

import (
	"video-pipeline-service/app"
	"video-pipeline-service/pkg/observability"
)

func main() {
	observability.StartProfiling("video-pipeline-service")
	app.Run()
}
