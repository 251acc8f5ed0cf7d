// Command apikey prints the bcrypt hash of an admin API key, for the
// admin.api_key_hash configuration field.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jwalitptl/passwordguard/pkg/security"
)

func main() {
	var key string
	if len(os.Args) > 1 {
		key = os.Args[1]
	} else {
		fmt.Fprint(os.Stderr, "api key: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read key: %v\n", err)
			os.Exit(1)
		}
		key = strings.TrimSpace(line)
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "api key must not be empty")
		os.Exit(1)
	}

	hash, err := security.HashAPIKey(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
