// Command mediashelf serves the media tracking API.
package main

func main() {
	Execute()
}
