package main

import (
	"github.com/OliveiraNt/topic-provisioner/cmd"
	"github.com/OliveiraNt/topic-provisioner/internal/utils"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	utils.InitLogger()

	cmd.Execute()
}
