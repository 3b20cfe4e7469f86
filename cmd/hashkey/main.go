// cmd/hashkey prints the argon2id encoding of an operator key, suitable for
// OPERATOR_KEY_HASH. The key is taken from the first argument or stdin.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jason-s-yu/apdebate/internal/auth"
	"github.com/sirupsen/logrus"
)

func main() {
	var key string
	if len(os.Args) > 1 {
		key = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			logrus.Fatalf("read key: %v", err)
		}
		key = strings.TrimRight(line, "\r\n")
	}
	if key == "" {
		logrus.Fatal("operator key must not be empty")
	}

	hash, err := auth.HashOperatorKey(key, auth.DefaultParams)
	if err != nil {
		logrus.Fatalf("hash: %v", err)
	}
	fmt.Println(hash)
}
