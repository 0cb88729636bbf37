package elasticsearch

// DefaultIndexName is the index used for business documents.
const DefaultIndexName = "businesses"

// indexMapping is the mapping for the businesses index. Name carries an
// edge n-gram subfield so partial words still match.
const indexMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "autocomplete_analyzer": {
          "type": "custom",
          "tokenizer": "autocomplete_tokenizer",
          "filter": ["lowercase"]
        },
        "autocomplete_search": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase"]
        }
      },
      "tokenizer": {
        "autocomplete_tokenizer": {
          "type": "edge_ngram",
          "min_gram": 2,
          "max_gram": 20,
          "token_chars": ["letter", "digit"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "id":             { "type": "keyword" },
      "name":           { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 }, "autocomplete": { "type": "text", "analyzer": "autocomplete_analyzer", "search_analyzer": "autocomplete_search" } } },
      "slug":           { "type": "keyword" },
      "description":    { "type": "text" },
      "category":       { "type": "keyword" },
      "city":           { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
      "state":          { "type": "keyword" },
      "cover_image":    { "type": "keyword", "index": false },
      "is_active":      { "type": "boolean" },
      "is_verified":    { "type": "boolean" },
      "average_rating": { "type": "float" },
      "total_reviews":  { "type": "integer" },
      "created_at":     { "type": "date" }
    }
  }
}`
