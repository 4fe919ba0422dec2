// Dev harness: send an image file through the species classifier and
// print the raw model reply.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"

	"github.com/strikenet/strikenet/internal/config"
	"github.com/strikenet/strikenet/pkg/classifier"
)

func main() {
	var imagePath = flag.String("image", "", "Path to an image file to classify")
	flag.Parse()

	if *imagePath == "" {
		log.Fatal("usage: classifier-cli -image <path>")
	}

	img, err := os.ReadFile(*imagePath)
	if err != nil {
		log.Fatalf("read image: %v", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(*imagePath))
	if contentType == "" {
		contentType = "image/jpeg"
	}

	client, err := classifier.NewDefaultClient(config.DefaultClassifierConfig())
	if err != nil {
		log.Fatalf("create classifier client: %v", err)
	}
	defer client.Close()

	text, err := client.Identify(context.Background(), img, contentType)
	if err != nil {
		log.Fatalf("identify: %v", err)
	}

	fmt.Println(text)
}
