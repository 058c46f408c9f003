package querybuilder

// InsertRows holds one slice of values per VALUES tuple
type InsertRows [][]interface{}
