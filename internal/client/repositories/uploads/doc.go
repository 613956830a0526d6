// Package uploads keeps the queue of export files whose object storage copy
// is still owed. A failed upload stays pending until a retry succeeds.
package uploads
