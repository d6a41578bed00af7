/*
Package orm breaks the state space into prefixed sections called
buckets. Each bucket contains only one type of object, addressed by a
primary key and optionally by secondary indexes. A bucket may also own
named sequences to generate those keys.

Most code should use ModelBucket, which operates directly on models and
hides the object wrapping that the lower level Bucket requires.
*/
package orm
