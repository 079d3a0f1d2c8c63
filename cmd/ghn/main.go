// Command ghn watches GitHub notifications from the terminal.
package main

func main() {
	Execute()
}
