// Command tornmarket analyzes Torn item-market listings: it matches pasted
// inventory text against the item dictionary and fetches live order-book
// snapshots to suggest prices.
package main

func main() {
	Execute()
}
