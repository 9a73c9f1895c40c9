// Command longbox imports comic book archives from a watch directory,
// normalizes their embedded metadata, and files them into a library
// under configurable naming templates.
package main
