// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/wafrelka/cookersh/cmd/cookersh"

func main() {
	cmd.Execute()
}
