package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/2beens/exercisetracker/pkg"

	log "github.com/sirupsen/logrus"
)

// prints the bcrypt hash to put in TRACKER_SECRET_HASH
func main() {
	secret := flag.String("secret", "", "secret to hash (read from stdin when empty)")
	cost := flag.Int("cost", pkg.DefaultSecretHashCost, "bcrypt cost")
	flag.Parse()

	if *secret == "" {
		fmt.Fprint(os.Stderr, "secret: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("read secret: %s", err)
		}
		*secret = strings.TrimSpace(line)
	}
	if *secret == "" {
		log.Fatal("empty secret")
	}

	hash, err := pkg.HashSecret(*secret, *cost)
	if err != nil {
		log.Fatalf("hash secret: %s", err)
	}
	fmt.Println(hash)
}
