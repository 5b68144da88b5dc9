package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	password := "Test123456"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}

	bcryptHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Println("生成失败:", err)
		os.Exit(1)
	}

	fmt.Printf("原始密码: %s\n", password)
	fmt.Printf("bcrypt哈希: %s\n", string(bcryptHash))
}
