package main

import (
	"log"

	"github.com/DevWael/google-review-incentive/config"
)

func main() {

	server, err := InitializeIncentiveService()
	if err != nil {
		log.Fatal(err)
		return
	}

	if err = server.Run(config.ServerStartPort); err != nil {
		log.Fatal(err.Error())
	}

}
