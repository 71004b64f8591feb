package sync

import "pos-sync-service/internal/store"

// Built-in dataset for a terminal whose authority has no users, menu or
// inventory yet.

const logoURL = "https://i.ibb.co/9mh7YqNf/logo-png.png"

var seedUsers = []store.User{
	{ID: "u1", Name: "Admin User", Role: store.RoleAdmin, PIN: "1234", Avatar: logoURL},
	{ID: "u2", Name: "John Cashier", Role: store.RoleCashier, PIN: "0000"},
	{ID: "u3", Name: "Sarah Waiter", Role: store.RoleWaiter, PIN: "1111"},
	{ID: "u4", Name: "Gordon Chef", Role: store.RoleChef, PIN: "2222"},
	{ID: "u5", Name: "Barry Barista", Role: store.RoleBarista, PIN: "3333"},
}

var seedInventory = []store.InventoryItem{
	{ID: "inv_water_500", Name: "Mineral Water 500ml", Quantity: 48, Unit: "Pcs", Category: "Beverages", LowStockThreshold: 12},
	{ID: "inv_water_1l", Name: "Mineral Water 1L", Quantity: 24, Unit: "Pcs", Category: "Beverages", LowStockThreshold: 6},
	{ID: "inv_milk_500", Name: "Milk 500ml", Quantity: 20, Unit: "Pcs", Category: "Dairy & Eggs", LowStockThreshold: 5},
	{ID: "inv_milk_1l", Name: "Milk 1L", Quantity: 15, Unit: "Pcs", Category: "Dairy & Eggs", LowStockThreshold: 4},
	{ID: "inv_cake_slice", Name: "Cake Slices (Assorted)", Quantity: 12, Unit: "Slices", Category: "Bakery & Pastries", LowStockThreshold: 3},
	{ID: "inv_muffins", Name: "Muffins", Quantity: 10, Unit: "Pcs", Category: "Bakery & Pastries", LowStockThreshold: 4},
	{ID: "inv_croissants", Name: "Croissants", Quantity: 8, Unit: "Pcs", Category: "Bakery & Pastries", LowStockThreshold: 2},
	{ID: "inv_beef_portion", Name: "Beef Portions (250g)", Quantity: 40, Unit: "Units", Category: "Meat & Poultry", LowStockThreshold: 10},
	{ID: "inv_chicken_portion", Name: "Chicken Portions", Quantity: 30, Unit: "Units", Category: "Meat & Poultry", LowStockThreshold: 8},
	{ID: "inv_goat_portion", Name: "Goat Meat Portions", Quantity: 20, Unit: "Units", Category: "Meat & Poultry", LowStockThreshold: 5},
	{ID: "inv_eggs", Name: "Eggs", Quantity: 10, Unit: "Trays", Category: "Dairy & Eggs", LowStockThreshold: 2},
	{ID: "inv_potatoes", Name: "Potatoes", Quantity: 4, Unit: "Sacks", Category: "Vegetables", LowStockThreshold: 1},
	{ID: "inv_cooking_oil", Name: "Cooking Oil", Quantity: 20, Unit: "Liters", Category: "Oils & Spices", LowStockThreshold: 5},
}

const (
	catBreakfast   = "BREAKFAST"
	catHealthKick  = "HEALTH KICK"
	catAppetizers  = "SOUP & SALADS"
	catBitings     = "BITINGS"
	catHotDrinks   = "COFFEE (Double)"
	catTeas        = "TEAS"
	catSoftDrinks  = "SOFT DRINKS"
	catIcedCoffee  = "ICED COFFEE"
	catShakes      = "SHAKES"
	catSmoothies   = "SMOOTHIES"
	catFreshJuices = "FRESH JUICES"
	catLemonades   = "LEMONADES"
	catMojitos     = "MOJITOS"
	catBakery      = "BAKERY & PASTRIES"
	catMains       = "MAIN COURSES"
	catBurgers     = "BURGERS / BURRITOS & SANDWICHES"
	catSides       = "Sides"
	catDesserts    = "DESSERTS"
)

var seedMenu = []store.MenuItem{
	{ID: "bf_eng", Name: "English Breakfast", Price: 900, Category: catBreakfast, Stock: 50, LowStockThreshold: 10},
	{ID: "bf_td", Name: "TDs Breakfast Combo", Price: 1000, Category: catBreakfast, Stock: 40, LowStockThreshold: 10},
	{ID: "bf_oat", Name: "Steel-Cut Oatmeal", Price: 500, Category: catBreakfast, Stock: 30, LowStockThreshold: 5},
	{ID: "bf_scram", Name: "The Scrambler", Price: 650, Category: catBreakfast, Stock: 40, LowStockThreshold: 10},
	{ID: "bf_toast", Name: "Classic Toast", Price: 700, Category: catBreakfast, Stock: 50, LowStockThreshold: 10},
	{ID: "bf_pan", Name: "Classic Pancakes", Price: 700, Category: catBreakfast, Stock: 50, LowStockThreshold: 10},
	{ID: "bf_waf", Name: "Classic Waffles", Price: 750, Category: catBreakfast, Stock: 50, LowStockThreshold: 10},
	{ID: "bf_prem", Name: "Pancakes/Waffles/French Toast", Price: 800, Category: catBreakfast, Stock: 40, LowStockThreshold: 5},
	{ID: "bf_add", Name: "Add Ons", Price: 200, Category: catBreakfast, Stock: 100, LowStockThreshold: 20},
	{ID: "hk_fs", Name: "Fruit Salad", Price: 250, Category: catHealthKick, Stock: 30, LowStockThreshold: 5},
	{ID: "hk_tdfs", Name: "TDs Fruit Salad", Price: 350, Category: catHealthKick, Stock: 30, LowStockThreshold: 5},
	{ID: "hk_gran", Name: "Homemade Granola", Price: 400, Category: catHealthKick, Stock: 25, LowStockThreshold: 5},
	{ID: "sp_nut", Name: "Spicy African Butternut Soup", Price: 400, Category: catAppetizers, Stock: 20, LowStockThreshold: 5},
	{ID: "sp_tom", Name: "Creamy Tomato Basil Soup", Price: 400, Category: catAppetizers, Stock: 20, LowStockThreshold: 5},
	{ID: "sld_hse", Name: "House Salad", Price: 450, Category: catAppetizers, Stock: 30, LowStockThreshold: 5},
	{ID: "sld_cjn", Name: "Cajun Chicken Salad", Price: 600, Category: catAppetizers, Stock: 25, LowStockThreshold: 5},
	{ID: "bit_fries", Name: "Fries (Plate)", Price: 300, Category: catBitings, Stock: 100, LowStockThreshold: 20},
	{ID: "bit_sam", Name: "Beef Samosa (Pair)", Price: 200, Category: catBitings, Stock: 100, LowStockThreshold: 20},
	{ID: "bit_saus", Name: "Sausage (Pair)", Price: 200, Category: catBitings, Stock: 100, LowStockThreshold: 20},
	{ID: "bit_w6", Name: "Chicken Wings (6pcs)", Price: 700, Category: catBitings, Stock: 40, LowStockThreshold: 10},
	{ID: "bit_w12", Name: "Chicken Wings (12pcs)", Price: 1100, Category: catBitings, Stock: 20, LowStockThreshold: 5},
	{ID: "bit_chi", Name: "Dry Chilli Chicken", Price: 600, Category: catBitings, Stock: 25, LowStockThreshold: 5},
	{ID: "bit_fish", Name: "Breaded Fish Fingers", Price: 800, Category: catBitings, Stock: 20, LowStockThreshold: 5},
	{ID: "bit_sat", Name: "Chicken Satay", Price: 550, Category: catBitings, Stock: 20, LowStockThreshold: 5},
	{ID: "cf_esp", Name: "Espresso (Single)", Price: 200, Category: catHotDrinks, Stock: 500, LowStockThreshold: 50},
	{ID: "cf_cap", Name: "Cappuccino", Price: 300, Category: catHotDrinks, Stock: 500, LowStockThreshold: 50},
	{ID: "cf_lat", Name: "Café Latte", Price: 400, Category: catHotDrinks, Stock: 500, LowStockThreshold: 50},
	{ID: "cf_moc", Name: "Mocha", Price: 400, Category: catHotDrinks, Stock: 200, LowStockThreshold: 20},
	{ID: "cf_latmac", Name: "Latte Macchiato", Price: 350, Category: catHotDrinks, Stock: 200, LowStockThreshold: 20},
	{ID: "cf_carmac", Name: "Caramel Macchiato", Price: 450, Category: catHotDrinks, Stock: 200, LowStockThreshold: 20},
	{ID: "cf_amer", Name: "Americano", Price: 300, Category: catHotDrinks, Stock: 500, LowStockThreshold: 50},
	{ID: "cf_hotc", Name: "Hot Chocolate", Price: 300, Category: catHotDrinks, Stock: 200, LowStockThreshold: 30},
	{ID: "t_afr", Name: "African Tea", Price: 200, Category: catTeas, Stock: 500, LowStockThreshold: 50},
	{ID: "t_mas", Name: "Masala Tea", Price: 250, Category: catTeas, Stock: 200, LowStockThreshold: 20},
	{ID: "t_grn", Name: "Green Tea", Price: 200, Category: catTeas, Stock: 200, LowStockThreshold: 20},
	{ID: "t_lem", Name: "Lemon Tea", Price: 200, Category: catTeas, Stock: 200, LowStockThreshold: 20},
	{ID: "t_herb", Name: "Herbal Tea", Price: 200, Category: catTeas, Stock: 100, LowStockThreshold: 10},
	{ID: "t_pot", Name: "Tea Pot", Price: 400, Category: catTeas, Stock: 50, LowStockThreshold: 10},
	{ID: "t_maspot", Name: "Masala Tea Pot", Price: 450, Category: catTeas, Stock: 50, LowStockThreshold: 10},
	{ID: "t_dawa", Name: "Dawa", Price: 300, Category: catTeas, Stock: 100, LowStockThreshold: 10},
	{ID: "sd_wat", Name: "Water - Keringet 1L", Price: 150, Category: catSoftDrinks, Stock: 100, LowStockThreshold: 20},
	{ID: "sd_soda300", Name: "Soda (300ml)", Price: 100, Category: catSoftDrinks, Stock: 100, LowStockThreshold: 20},
	{ID: "ice_cof", Name: "Iced Coffee", Price: 350, Category: catIcedCoffee, Stock: 50, LowStockThreshold: 10},
	{ID: "ice_lat", Name: "Iced Latte", Price: 400, Category: catIcedCoffee, Stock: 50, LowStockThreshold: 10},
	{ID: "ice_moc", Name: "Iced Mocha", Price: 450, Category: catIcedCoffee, Stock: 50, LowStockThreshold: 10},
	{ID: "ice_van", Name: "Iced Vanilla Latte", Price: 450, Category: catIcedCoffee, Stock: 50, LowStockThreshold: 10},
	{ID: "ice_car", Name: "Iced Caramel Latte", Price: 450, Category: catIcedCoffee, Stock: 50, LowStockThreshold: 10},
	{ID: "ice_haz", Name: "Iced Hazelnut Latte", Price: 450, Category: catIcedCoffee, Stock: 50, LowStockThreshold: 10},
	{ID: "sh_salt", Name: "Salted Caramel", Price: 600, Category: catShakes, Stock: 30, LowStockThreshold: 5},
	{ID: "sh_mnt", Name: "Mint Shake", Price: 500, Category: catShakes, Stock: 40, LowStockThreshold: 10},
	{ID: "sh_van", Name: "Vanilla Shake", Price: 450, Category: catShakes, Stock: 40, LowStockThreshold: 10},
	{ID: "sh_str", Name: "Strawberry Shake", Price: 450, Category: catShakes, Stock: 40, LowStockThreshold: 10},
	{ID: "sh_chc", Name: "Chocolate Shake", Price: 450, Category: catShakes, Stock: 40, LowStockThreshold: 10},
	{ID: "sh_ore", Name: "Oreo Shake", Price: 500, Category: catShakes, Stock: 40, LowStockThreshold: 10},
	{ID: "sh_esp", Name: "Espresso Shake", Price: 500, Category: catShakes, Stock: 40, LowStockThreshold: 10},
	{ID: "sh_frt", Name: "Fruit Shake (Mango, Banana)", Price: 450, Category: catShakes, Stock: 40, LowStockThreshold: 10},
	{ID: "sh_trop", Name: "Tropical Blend shake", Price: 550, Category: catShakes, Stock: 30, LowStockThreshold: 5},
	{ID: "sm_str", Name: "Strawberry Smoothie", Price: 450, Category: catSmoothies, Stock: 30, LowStockThreshold: 5},
	{ID: "sm_trop", Name: "Tropical Blend Smoothie", Price: 500, Category: catSmoothies, Stock: 30, LowStockThreshold: 5},
	{ID: "sm_man", Name: "Mango Crush Smoothie", Price: 400, Category: catSmoothies, Stock: 30, LowStockThreshold: 5},
	{ID: "sm_ban", Name: "Banana Bash", Price: 400, Category: catSmoothies, Stock: 30, LowStockThreshold: 5},
	{ID: "sm_pro", Name: "TDs Protein Smoothie", Price: 550, Category: catSmoothies, Stock: 30, LowStockThreshold: 5},
	{ID: "ju_mint", Name: "Minty Pinade", Price: 350, Category: catFreshJuices, Stock: 30, LowStockThreshold: 5},
	{ID: "ju_man", Name: "Mango /Passion /Pineapple", Price: 300, Category: catFreshJuices, Stock: 50, LowStockThreshold: 10},
	{ID: "ju_org", Name: "Orange Juice", Price: 400, Category: catFreshJuices, Stock: 40, LowStockThreshold: 5},
	{ID: "ju_tropmix", Name: "Tropical Juice", Price: 400, Category: catFreshJuices, Stock: 40, LowStockThreshold: 5},
	{ID: "lem_flav", Name: "Flavored Lemonades", Price: 400, Category: catLemonades, Stock: 30, LowStockThreshold: 5},
	{ID: "moc_moj", Name: "Virgin Mojito", Price: 350, Category: catMojitos, Stock: 30, LowStockThreshold: 5},
	{ID: "moc_pina", Name: "Virgin Pina colada", Price: 450, Category: catMojitos, Stock: 30, LowStockThreshold: 5},
	{ID: "moc_dd", Name: "Drink and Drive", Price: 450, Category: catMojitos, Stock: 30, LowStockThreshold: 5},
	{ID: "moc_str", Name: "Strawberry Mocktail", Price: 450, Category: catMojitos, Stock: 30, LowStockThreshold: 5},
	{ID: "bk_muf_asst", Name: "Assorted Muffins (Plain)", Price: 100, Category: catBakery, Stock: 24, LowStockThreshold: 5},
	{ID: "bk_muf_nr", Name: "Assorted Muffins (Nuts/Raisins)", Price: 150, Category: catBakery, Stock: 24, LowStockThreshold: 5},
	{ID: "bk_don_pl", Name: "Donuts (Plain)", Price: 100, Category: catBakery, Stock: 36, LowStockThreshold: 12},
	{ID: "bk_don_ch", Name: "Donuts (Chocolate)", Price: 150, Category: catBakery, Stock: 36, LowStockThreshold: 12},
	{ID: "bk_cro_pl", Name: "Croissants (Plain)", Price: 200, Category: catBakery, Stock: 20, LowStockThreshold: 5},
	{ID: "bk_cro_ch", Name: "Croissants (Chocolate)", Price: 250, Category: catBakery, Stock: 20, LowStockThreshold: 5},
	{ID: "bk_cake", Name: "Cake Slice (Lemon/Marble/Vanilla)", Price: 300, Category: catBakery, Stock: 12, LowStockThreshold: 4},
	{ID: "bk_for", Name: "Black/White Forest Cake", Price: 400, Category: catBakery, Stock: 12, LowStockThreshold: 4},
	{ID: "bk_cin", Name: "Cinnamon Roll", Price: 150, Category: catBakery, Stock: 24, LowStockThreshold: 8},
	{ID: "bk_ban", Name: "Banana Bread", Price: 300, Category: catBakery, Stock: 12, LowStockThreshold: 4},
	{ID: "mn_fil", Name: "Grilled Fillet Steak", Price: 950, Category: catMains, Stock: 15, LowStockThreshold: 5},
	{ID: "mn_tbone", Name: "T-Bone Steak", Price: 1500, Category: catMains, Stock: 10, LowStockThreshold: 3},
	{ID: "mn_lamb", Name: "Lamb Chops", Price: 1200, Category: catMains, Stock: 10, LowStockThreshold: 3},
	{ID: "mn_med", Name: "Grilled Beef Medallion", Price: 1100, Category: catMains, Stock: 12, LowStockThreshold: 3},
	{ID: "mn_bcur", Name: "Beef Curry", Price: 800, Category: catMains, Stock: 20, LowStockThreshold: 5},
	{ID: "mn_ccur", Name: "Chicken Curry", Price: 900, Category: catMains, Stock: 20, LowStockThreshold: 5},
	{ID: "mn_ctik", Name: "Chicken Tikka", Price: 900, Category: catMains, Stock: 20, LowStockThreshold: 5},
	{ID: "mn_sbeef", Name: "Stir-Fried Beef", Price: 700, Category: catMains, Stock: 20, LowStockThreshold: 5},
	{ID: "mn_schick", Name: "Stir-Fried Chicken", Price: 850, Category: catMains, Stock: 20, LowStockThreshold: 5},
	{ID: "mn_gbreast", Name: "Grilled Chicken Breast", Price: 1100, Category: catMains, Stock: 20, LowStockThreshold: 5},
	{ID: "mn_fcoc", Name: "Fish in Coconut", Price: 1000, Category: catMains, Stock: 15, LowStockThreshold: 5},
	{ID: "mn_gfish", Name: "Grilled Fish Fillet", Price: 1100, Category: catMains, Stock: 15, LowStockThreshold: 5},
	{ID: "mn_til", Name: "Whole Tilapia", Price: 950, Category: catMains, Stock: 10, LowStockThreshold: 3},
	{ID: "mn_spag", Name: "Spaghetti Bolognese", Price: 950, Category: catMains, Stock: 25, LowStockThreshold: 5},
	{ID: "bg_beef", Name: "Beef Burger", Price: 700, Category: catBurgers, Stock: 30, LowStockThreshold: 5},
	{ID: "bg_chick", Name: "Chicken Burger", Price: 850, Category: catBurgers, Stock: 30, LowStockThreshold: 5},
	{ID: "bg_tikka", Name: "Chicken Tikka Burger", Price: 900, Category: catBurgers, Stock: 25, LowStockThreshold: 5},
	{ID: "bg_extra", Name: "Burger Extras", Price: 100, Category: catBurgers, Stock: 50, LowStockThreshold: 10},
	{ID: "snd_stk", Name: "Steak Sandwich", Price: 700, Category: catBurgers, Stock: 20, LowStockThreshold: 5},
	{ID: "snd_club", Name: "Clubhouse Sandwich", Price: 600, Category: catBurgers, Stock: 20, LowStockThreshold: 5},
	{ID: "snd_chick", Name: "Chicken Sandwich", Price: 800, Category: catBurgers, Stock: 20, LowStockThreshold: 5},
	{ID: "bur_chick", Name: "Chicken Burrito", Price: 600, Category: catBurgers, Stock: 20, LowStockThreshold: 5},
	{ID: "bur_beef", Name: "Beef Burrito", Price: 500, Category: catBurgers, Stock: 20, LowStockThreshold: 5},
	{ID: "bur_veg", Name: "Vegetable Burrito", Price: 400, Category: catBurgers, Stock: 20, LowStockThreshold: 5},
	{ID: "acc_pot", Name: "Mashed Potatoes", Price: 0, Category: catSides, Stock: 50, LowStockThreshold: 10},
	{ID: "acc_fries", Name: "Fries", Price: 0, Category: catSides, Stock: 50, LowStockThreshold: 10},
	{ID: "acc_rice", Name: "Rice", Price: 0, Category: catSides, Stock: 50, LowStockThreshold: 10},
	{ID: "acc_chap", Name: "Chapati", Price: 0, Category: catSides, Stock: 50, LowStockThreshold: 10},
	{ID: "acc_ugali", Name: "Ugali", Price: 0, Category: catSides, Stock: 50, LowStockThreshold: 10},
	{ID: "acc_vrice", Name: "Vegetable Rice", Price: 150, Category: catSides, Stock: 50, LowStockThreshold: 10},
	{ID: "dst_ban", Name: "Banana Split", Price: 550, Category: catDesserts, Stock: 15, LowStockThreshold: 5},
	{ID: "dst_sun", Name: "Classic Sundae", Price: 500, Category: catDesserts, Stock: 15, LowStockThreshold: 4},
	{ID: "dst_waf", Name: "Strawberry/Chocolate Waffle", Price: 250, Category: catDesserts, Stock: 20, LowStockThreshold: 5},
}

// recipe is the inventory drawn by one unit of a menu item.
type recipe []struct {
	InventoryID string
	Amount      float64
}

var kitchenRecipes = map[string]recipe{
	"bf_eng": {
		{InventoryID: "inv_eggs", Amount: 0.06},
		{InventoryID: "inv_milk_500", Amount: 0.1},
	},
	"mn_fil": {
		{InventoryID: "inv_beef_portion", Amount: 1},
		{InventoryID: "inv_potatoes", Amount: 0.05},
	},
}
