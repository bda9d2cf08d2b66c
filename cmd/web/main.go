package main

import "collabhub_backend/internal/app"

func main() {
	app.Run()
}
