package mongolsp

// Static reference tables for the MongoDB query language and shell API.
// These back completion candidates and diagnostic validation; live data
// (database, collection, and field names) comes from the deployment instead.

// StageOperators are the aggregation pipeline stage names.
var StageOperators = []string{
	"$addFields", "$bucket", "$bucketAuto", "$changeStream", "$collStats",
	"$count", "$densify", "$documents", "$facet", "$fill", "$geoNear",
	"$graphLookup", "$group", "$indexStats", "$limit", "$listSessions",
	"$lookup", "$match", "$merge", "$out", "$project", "$redact",
	"$replaceRoot", "$replaceWith", "$sample", "$search", "$searchMeta",
	"$set", "$setWindowFields", "$skip", "$sort", "$sortByCount",
	"$unionWith", "$unset", "$unwind", "$vectorSearch",
}

// QueryOperators are the operators valid inside query predicates.
var QueryOperators = []string{
	"$all", "$and", "$bitsAllClear", "$bitsAllSet", "$bitsAnyClear",
	"$bitsAnySet", "$comment", "$elemMatch", "$eq", "$exists", "$expr",
	"$geoIntersects", "$geoWithin", "$gt", "$gte", "$in", "$jsonSchema",
	"$lt", "$lte", "$mod", "$ne", "$near", "$nearSphere", "$nin", "$nor",
	"$not", "$or", "$rand", "$regex", "$size", "$slice", "$text", "$type",
	"$where",
}

// AggregationOperators are the expression and accumulator operators valid
// inside aggregation expressions.
var AggregationOperators = []string{
	"$abs", "$accumulator", "$acos", "$add", "$addToSet", "$allElementsTrue",
	"$and", "$anyElementTrue", "$arrayElemAt", "$arrayToObject", "$avg",
	"$ceil", "$cmp", "$concat", "$concatArrays", "$cond", "$convert",
	"$count", "$dateAdd", "$dateDiff", "$dateFromParts", "$dateFromString",
	"$dateToParts", "$dateToString", "$dateTrunc", "$divide", "$eq",
	"$exp", "$filter", "$first", "$firstN", "$floor", "$function", "$getField",
	"$gt", "$gte", "$ifNull", "$in", "$indexOfArray", "$indexOfCP",
	"$isArray", "$isNumber", "$last", "$lastN", "$let", "$literal", "$ln",
	"$log", "$log10", "$lt", "$lte", "$ltrim", "$map", "$max", "$maxN",
	"$mergeObjects", "$meta", "$min", "$minN", "$mod", "$multiply", "$ne",
	"$not", "$objectToArray", "$or", "$pow", "$push", "$range", "$rank",
	"$reduce", "$regexFind", "$regexFindAll", "$regexMatch", "$replaceAll",
	"$replaceOne", "$reverseArray", "$round", "$rtrim", "$setDifference",
	"$setEquals", "$setField", "$setIntersection", "$setIsSubset",
	"$setUnion", "$size", "$slice", "$sortArray", "$split", "$sqrt",
	"$stdDevPop", "$stdDevSamp", "$strLenBytes", "$strLenCP", "$strcasecmp",
	"$substr", "$substrBytes", "$substrCP", "$subtract", "$sum", "$switch",
	"$toBool", "$toDate", "$toDecimal", "$toDouble", "$toInt", "$toLong",
	"$toLower", "$toObjectId", "$toString", "$toUpper", "$trim", "$trunc",
	"$type", "$unsetField", "$week", "$year", "$zip",
}

// AccumulatorStages are the stages whose bodies take aggregation expressions
// rather than query predicates. Operators nested under one of these classify
// as aggregation operators.
var AccumulatorStages = map[string]bool{
	"$group":           true,
	"$project":         true,
	"$addFields":       true,
	"$set":             true,
	"$bucket":          true,
	"$bucketAuto":      true,
	"$facet":           true,
	"$setWindowFields": true,
}

// DatabaseMethods are methods available on the db handle.
var DatabaseMethods = []string{
	"adminCommand", "aggregate", "createCollection", "createView",
	"currentOp", "dropDatabase", "getCollection", "getCollectionInfos",
	"getCollectionNames", "getMongo", "getName", "getSiblingDB", "hello",
	"hostInfo", "listCommands", "runCommand", "serverStatus", "stats",
	"version",
}

// CollectionMethods are methods available on a collection handle.
var CollectionMethods = []string{
	"aggregate", "bulkWrite", "countDocuments", "createIndex",
	"createIndexes", "deleteMany", "deleteOne", "distinct", "drop",
	"dropIndex", "dropIndexes", "estimatedDocumentCount", "find", "findOne",
	"findOneAndDelete", "findOneAndReplace", "findOneAndUpdate",
	"getIndexes", "insertMany", "insertOne", "renameCollection",
	"replaceOne", "stats", "updateMany", "updateOne", "watch",
}

// CursorMethods are methods available on find and aggregation cursors.
var CursorMethods = []string{
	"allowDiskUse", "batchSize", "close", "collation", "count", "explain",
	"forEach", "hasNext", "hint", "isExhausted", "itcount", "limit", "map",
	"max", "maxTimeMS", "min", "next", "noCursorTimeout", "pretty",
	"readConcern", "readPref", "returnKey", "size", "skip", "sort",
	"toArray", "tryNext",
}

// StreamProcessorMethods are methods available on the sp handle.
var StreamProcessorMethods = []string{
	"createStreamProcessor", "getProcessor", "listConnections",
	"listStreamProcessors", "process",
}

// GlobalSymbols are the identifiers the shell defines at top level.
var GlobalSymbols = []string{"db", "sp", "use", "session", "config"}

var (
	stageOperatorSet       = toSet(StageOperators)
	queryOperatorSet       = toSet(QueryOperators)
	aggregationOperatorSet = toSet(AggregationOperators)
	databaseMethodSet      = toSet(DatabaseMethods)
	collectionMethodSet    = toSet(CollectionMethods)
	cursorMethodSet        = toSet(CursorMethods)
)

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}

	return set
}

// IsStageOperator reports whether name is a known pipeline stage.
func IsStageOperator(name string) bool { return stageOperatorSet[name] }

// IsQueryOperator reports whether name is a known query operator.
func IsQueryOperator(name string) bool { return queryOperatorSet[name] }

// IsAggregationOperator reports whether name is a known aggregation operator.
func IsAggregationOperator(name string) bool { return aggregationOperatorSet[name] }

// IsOperator reports whether name is known in any operator table.
func IsOperator(name string) bool {
	return stageOperatorSet[name] || queryOperatorSet[name] || aggregationOperatorSet[name]
}

// IsDatabaseMethod reports whether name is a known db method.
func IsDatabaseMethod(name string) bool { return databaseMethodSet[name] }

// IsCollectionMethod reports whether name is a known collection method.
func IsCollectionMethod(name string) bool { return collectionMethodSet[name] }

// IsCursorMethod reports whether name is a known cursor method.
func IsCursorMethod(name string) bool { return cursorMethodSet[name] }
